// Package errors defines the structured error type used across codemap.
// Errors carry a code, category, and severity so that callers can decide
// between aborting (fatal) and collecting the error as a warning.
package errors

import (
	"fmt"
)

// Error is the structured error type for codemap.
type Error struct {
	// Code is the unique error code (e.g. "ERR_INDEX_CORRUPT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the subsystem that raised the error.
	Category Category

	// Severity decides between abort (fatal) and degrade (warning).
	Severity Severity

	// Path is the file the error relates to, if any.
	Path string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, enabling errors.Is with sentinel values.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithPath attaches a file path to the error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// New creates a new Error with the given code and message.
// Category and severity are derived from the code.
func New(code, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// ConfigError creates a fatal configuration error.
func ConfigError(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// FileIOError creates a non-fatal file I/O warning for the given path.
func FileIOError(path string, cause error) *Error {
	return New(ErrCodeFileIO, cause.Error(), cause).WithPath(path)
}

// ExtractionError creates a non-fatal chunk extraction warning.
func ExtractionError(path string, cause error) *Error {
	return New(ErrCodeExtraction, cause.Error(), cause).WithPath(path)
}

// IndexCorruptError creates a fatal index corruption error.
func IndexCorruptError(message string, cause error) *Error {
	return New(ErrCodeIndexCorrupt, message, cause)
}

// GraphAmbiguousError creates a non-fatal ambiguous-reference warning.
func GraphAmbiguousError(path, ref string) *Error {
	return New(ErrCodeGraphAmbiguous, fmt.Sprintf("ambiguous reference %q", ref), nil).WithPath(path)
}

// IsFatal reports whether an error should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code, or "" for foreign errors.
func GetCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
