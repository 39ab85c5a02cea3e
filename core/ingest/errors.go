package ingest

import (
	"errors"
	"fmt"
)

// FormatError means the payload is not of the expected kind at all. It is
// raised before any record is processed.
type FormatError struct {
	Source string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message(), e.Err)
	}
	return e.Message()
}

// Message describes the problem without the wrapped parser error.
func (e *FormatError) Message() string {
	return fmt.Sprintf("%s: invalid format: %s", e.Source, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// NewFormatError builds a FormatError.
func NewFormatError(source, reason string, err error) *FormatError {
	return &FormatError{Source: source, Reason: reason, Err: err}
}

// IsFormatError reports whether err is, or wraps, a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// ErrMissingHostname is reported for rows of formats that always carry a
// hostname column. Only scan results may be identified by address alone.
var ErrMissingHostname = errors.New("missing hostname")

// ErrRunFailed wraps errors that aborted a run and rolled it back.
var ErrRunFailed = errors.New("import run failed")

// RunError carries the internal cause next to the message safe to show users.
type RunError struct {
	Message string
	Err     error
}

func (e *RunError) Error() string { return fmt.Sprintf("%s: %v", e.Message, e.Err) }

func (e *RunError) Unwrap() []error { return []error{ErrRunFailed, e.Err} }

// validationError is a per-record problem; the record is skipped.
type validationError struct {
	reason string
}

func (e validationError) Error() string { return e.reason }

func invalid(format string, args ...any) error {
	return validationError{reason: fmt.Sprintf(format, args...)}
}
