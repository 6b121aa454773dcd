package core

// errors.go defines the failure taxonomy of a validation run.
//
// Every error that leaves the row loop is classified into exactly one kind:
//
//   - StructuralFailure: the file is malformed (header, row shape, line
//     ending, cohort sequence). Reported as FAILED.
//   - CollaboratorIOFailure: the blob store could not serve the file.
//     Reported as FAILED with the underlying error text.
//   - UnclassifiedFailure: anything else, treated as a validator defect and
//     reported as SUCCESS with a warning so the pipeline is never blocked.

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/prevalidate/internal/storage"
)

// FailureKind discriminates why a validation run stopped.
type FailureKind int

const (
	StructuralFailure FailureKind = iota
	CollaboratorIOFailure
	UnclassifiedFailure
)

func (k FailureKind) String() string {
	switch k {
	case StructuralFailure:
		return "structural"
	case CollaboratorIOFailure:
		return "collaborator_io"
	default:
		return "unclassified"
	}
}

// Messages for structural and collaborator failures.
const (
	MsgHeaderEmpty      = "The header row was empty."
	MsgLineEnding       = "Detected an unexpected line ending. The only supported line ending is '\\n'"
	MsgMissingValues    = "CSV format error - line is missing expected value(s)."
	MsgTooManyValues    = "CSV format error - line has too many values."
	MsgCohortFormat     = "Cohort Id Format is invalid. Cohort ID should start with 0 and increment by 1."
	MsgCohortCount      = "Number of cohorts is higher than currently supported."
	MsgSizeLookupFailed = "Failed to get the input file size. Please check the file path and its permission."
	MsgDownloadFailed   = "Failed to download the input file. Please check the file path and its permission."
	MsgStreamFailed     = "Failed to stream the input file. Please check the file path and its permission."
	MsgCanceled         = "Validation was cancelled before the whole file was checked."
)

// Failure is the error type returned by every validation component.
type Failure struct {
	Kind    FailureKind
	Message string // Report-facing message
	Err     error  // Underlying cause, if any
}

func (f *Failure) Error() string {
	if f.Err != nil && f.Message != "" {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// structural returns a StructuralFailure carrying msg.
func structural(msg string) *Failure {
	return &Failure{Kind: StructuralFailure, Message: msg}
}

// collaborator returns a CollaboratorIOFailure for a store error.
func collaborator(msg string, err error) *Failure {
	return &Failure{Kind: CollaboratorIOFailure, Message: msg, Err: err}
}

// unclassified wraps an unexpected error.
func unclassified(err error) *Failure {
	return &Failure{Kind: UnclassifiedFailure, Err: err}
}

// classify maps any error raised while streaming rows to a Failure. A
// recognized store API error becomes the stream failure; errors that are
// neither a Failure nor a store API error fail open.
func classify(err error) *Failure {
	if err == nil {
		return nil
	}

	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	var apiErr *storage.APIError
	if errors.As(err, &apiErr) {
		return collaborator(MsgStreamFailed, apiErr)
	}
	return unclassified(err)
}

// IsFailureKind reports whether err is a Failure of the given kind.
func IsFailureKind(err error, kind FailureKind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}
