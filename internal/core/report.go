package core

import (
	"fmt"
	"sort"
	"strings"
)

// ValidatorName identifies this validator in every report.
const ValidatorName = "Input Data Validator"

// Result is the verdict of a validation run.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailed  Result = "FAILED"
)

// Outcome records which path produced a report, for metrics and logs.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed" // every row was read
	OutcomeAborted   Outcome = "aborted"   // structural, cohort or collaborator failure
	OutcomeSkipped   Outcome = "skipped"   // over the size ceiling
	OutcomeTimedOut  Outcome = "timed_out" // time budget spent
	OutcomeFailOpen  Outcome = "fail_open" // unexpected fault
	OutcomeCanceled  Outcome = "canceled"  // caller cancelled the run
)

// Details carries the row count and classified field issues of a run.
type Details struct {
	RowsProcessedCount int64                  `json:"rows_processed_count" yaml:"rows_processed_count"`
	ValidationErrors   map[string]FieldIssues `json:"validation_errors,omitempty" yaml:"validation_errors,omitempty"`
	ValidationWarnings map[string]FieldIssues `json:"validation_warnings,omitempty" yaml:"validation_warnings,omitempty"`
}

// Report is the outcome of one validation run. Details is nil when the
// validator failed open on an unexpected error.
type Report struct {
	Result        Result   `json:"validation_result" yaml:"validation_result"`
	ValidatorName string   `json:"validator_name" yaml:"validator_name"`
	Message       string   `json:"message" yaml:"message"`
	Details       *Details `json:"details,omitempty" yaml:"details,omitempty"`

	Outcome Outcome `json:"-" yaml:"-"`
}

// Failed reports whether the run rejected the file.
func (r Report) Failed() bool {
	return r.Result == ResultFailed
}

// RowsProcessed returns the processed row count, or 0 without details.
func (r Report) RowsProcessed() int64 {
	if r.Details == nil {
		return 0
	}
	return r.Details.RowsProcessedCount
}

// ReportBuilder renders reports for one input path.
type ReportBuilder struct {
	Path string

	// ConfigWarnings are appended to composed success messages.
	ConfigWarnings []string
}

func (b ReportBuilder) report(outcome Outcome, result Result, msg string, details *Details) Report {
	return Report{
		Result:        result,
		ValidatorName: ValidatorName,
		Message:       msg,
		Details:       details,
		Outcome:       outcome,
	}
}

// Failure renders a structural, cohort or collaborator failure. Unclassified
// failures fail open.
func (b ReportBuilder) Failure(f *Failure, rows int64) Report {
	switch f.Kind {
	case StructuralFailure:
		return b.report(OutcomeAborted, ResultFailed,
			fmt.Sprintf("File: %s failed validation. Error: %s", b.Path, f.Message),
			&Details{RowsProcessedCount: rows})
	case CollaboratorIOFailure:
		msg := fmt.Sprintf("File: %s failed validation. Error: %s", b.Path, f.Message)
		if f.Err != nil {
			msg += "\n\t" + f.Err.Error()
		}
		return b.report(OutcomeAborted, ResultFailed, msg, &Details{RowsProcessedCount: rows})
	default:
		return b.FailOpen(f.Err)
	}
}

// Fields composes the verdict from classified field issues.
func (b ReportBuilder) Fields(rows int64, errs, warns map[string]FieldIssues) Report {
	details := &Details{RowsProcessedCount: rows}
	if len(warns) > 0 {
		details.ValidationWarnings = warns
	}

	if len(errs) > 0 {
		details.ValidationErrors = errs
		return b.report(OutcomeCompleted, ResultFailed,
			fmt.Sprintf("File: %s failed validation, with errors on '%s'.", b.Path, joinFields(errs)),
			details)
	}

	msg := fmt.Sprintf("File: %s completed validation successfully", b.Path)
	if len(warns) > 0 {
		msg += fmt.Sprintf(", with warnings on '%s'.", joinFields(warns))
	}
	return b.report(OutcomeCompleted, ResultSuccess, b.withConfigWarnings(msg), details)
}

// SizeSkip reports a file over the size ceiling as skipped.
func (b ReportBuilder) SizeSkip(maxBytes int64) Report {
	return b.report(OutcomeSkipped, ResultSuccess,
		fmt.Sprintf("WARNING: File: %s is too large to download. The maximum file size is %d MB. Skipped input_data validation. completed validation successfully",
			b.Path, maxBytes/(1024*1024)),
		&Details{RowsProcessedCount: 0})
}

// Timeout reports a run cut short by the time budget.
func (b ReportBuilder) Timeout(rows int64) Report {
	return b.report(OutcomeTimedOut, ResultSuccess,
		fmt.Sprintf("File: %s completed validation successfully, with some warnings. Warning: ran the validations on %d total rows, the rest of the rows were skipped to avoid container timeout. ",
			b.Path, rows),
		&Details{RowsProcessedCount: rows})
}

// Canceled reports a run stopped by its caller. The file was not fully
// checked, so the run never passes.
func (b ReportBuilder) Canceled(err error, rows int64) Report {
	return b.report(OutcomeCanceled, ResultFailed,
		fmt.Sprintf("File: %s failed validation. Error: %s\n\t%v", b.Path, MsgCanceled, err),
		&Details{RowsProcessedCount: rows})
}

// FailOpen turns an unexpected fault into a success carrying a warning.
func (b ReportBuilder) FailOpen(err error) Report {
	text := "unknown error"
	if err != nil {
		text = err.Error()
	}
	return b.report(OutcomeFailOpen, ResultSuccess,
		fmt.Sprintf("WARNING: %s threw an unexpected error: %s", ValidatorName, text),
		nil)
}

func (b ReportBuilder) withConfigWarnings(msg string) string {
	if len(b.ConfigWarnings) == 0 {
		return msg
	}
	return msg + " " + strings.Join(b.ConfigWarnings, " ")
}

func joinFields(m map[string]FieldIssues) string {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return strings.Join(fields, ", ")
}
