package report

import (
	"errors"
	"fmt"
)

// Code classifies resolution and coercion failures.
type Code string

const (
	CodeUnknownParameterType Code = "UNKNOWN_PARAMETER_TYPE"
	CodeMissingParameterName Code = "MISSING_PARAMETER_NAME"
	CodeMissingAttributes    Code = "MISSING_ATTRIBUTES"
	CodeTooManyParameters    Code = "TOO_MANY_PARAMETERS"
	CodeRemoteService        Code = "REMOTE_SERVICE_ERROR"
	CodeConversion           Code = "CONVERSION_ERROR"
	CodeReportNotFound       Code = "REPORT_NOT_FOUND"
	CodeInvalidSubmission    Code = "INVALID_SUBMISSION"
)

// Sentinel errors, matched with errors.Is against any *Error of the same code.
var (
	ErrUnknownParameterType = &Error{Code: CodeUnknownParameterType}
	ErrMissingParameterName = &Error{Code: CodeMissingParameterName}
	ErrMissingAttributes    = &Error{Code: CodeMissingAttributes}
	ErrTooManyParameters    = &Error{Code: CodeTooManyParameters}
	ErrRemoteService        = &Error{Code: CodeRemoteService}
	ErrConversion           = &Error{Code: CodeConversion}
	ErrReportNotFound       = &Error{Code: CodeReportNotFound}
	ErrInvalidSubmission    = &Error{Code: CodeInvalidSubmission}
)

// Error is a classified failure carrying the offending parameter where known.
type Error struct {
	Code      Code
	Parameter string
	Type      string
	Detail    string
	Err       error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Parameter != "" {
		msg += fmt.Sprintf(" (parameter %q", e.Parameter)
		if e.Type != "" {
			msg += fmt.Sprintf(", type %q", e.Type)
		}
		msg += ")"
	} else if e.Type != "" {
		msg += fmt.Sprintf(" (type %q)", e.Type)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so sentinels compare equal to detailed errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func newError(code Code, param, typ, detail string, cause error) *Error {
	return &Error{Code: code, Parameter: param, Type: typ, Detail: detail, Err: cause}
}

// RemoteError wraps a metadata fetch failure.
func RemoteError(detail string, cause error) error {
	return newError(CodeRemoteService, "", "", detail, cause)
}

// ConversionError reports a value that cannot be converted to its canonical type.
func ConversionError(param string, t CanonicalType, detail string, cause error) error {
	return newError(CodeConversion, param, string(t), detail, cause)
}

// NotFoundError reports an unknown report definition.
func NotFoundError(detail string) error {
	return newError(CodeReportNotFound, "", "", detail, nil)
}

// SubmissionError reports a submission that fails validation as a whole.
func SubmissionError(detail string, cause error) error {
	return newError(CodeInvalidSubmission, "", "", detail, cause)
}
