package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages
// for failures that happen around a validation rather than inside it. Findings
// about the input file itself are carried in the Report, never here.
//
// Codes are grouped by category:
//
//	REQ001-REQ099   malformed validation requests
//	STORE001-099    storage provider setup
//	VAL001-VAL099   validation service capacity and cancellation
//	ERR000          fallback, check the logs for the technical error
//
// The first matching pattern wins, so specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// Request errors
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Request body is too large",
			Action:  "Send only the validation parameters, not the file contents",
			Code:    "REQ004",
		},
	},
	{
		pattern: "decode request",
		msg: UserMessage{
			Message: "Request body is not valid JSON",
			Action:  "Send a JSON object with an input_path field",
			Code:    "REQ001",
		},
	},
	{
		pattern: "input path is required",
		msg: UserMessage{
			Message: "No input path was given",
			Action:  "Provide the s3:// or gs:// address of the file to validate",
			Code:    "REQ002",
		},
	},
	{
		pattern: "unknown role",
		msg: UserMessage{
			Message: "Unknown data role",
			Action:  "Use one of PUBLISHER or PARTNER",
			Code:    "REQ003",
		},
	},

	// Storage setup errors
	{
		pattern: "unsupported cloud provider",
		msg: UserMessage{
			Message: "Cloud provider is not supported",
			Action:  "Configure one of aws, gcp or local",
			Code:    "STORE001",
		},
	},
	{
		pattern: "load aws config",
		msg: UserMessage{
			Message: "AWS credentials could not be loaded",
			Action:  "Check the configured region and credentials",
			Code:    "STORE002",
		},
	},
	{
		pattern: "create storage client",
		msg: UserMessage{
			Message: "Google Cloud Storage client could not be created",
			Action:  "Check the configured service account credentials",
			Code:    "STORE003",
		},
	},

	// Validation service errors
	{
		pattern: "too many concurrent validations",
		msg: UserMessage{
			Message: "System is busy processing other validations",
			Action:  "Please wait a moment and try again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "VAL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Retry with stream mode or raise the request timeout",
			Code:    "VAL003",
		},
	},
	{
		pattern: "server is shutting down",
		msg: UserMessage{
			Message: "Service is restarting",
			Action:  "Please try again in a few moments",
			Code:    "VAL004",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first pattern match, or the ERR000 fallback.
//
// Example:
//
//	msg := MapError(ErrTooManyValidations)
//	// msg.Code == "VAL001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
