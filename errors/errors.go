// Package errors provides structured errors with stable codes for the
// failure taxonomy: spec validation, parameter resolution, missing imports,
// external tool failures. Every error is fatal for the run that raised it.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies an error category. Codes are stable and suitable for
// asserting on in tests and for exit-path reporting.
type Code string

const (
	ErrUnknown  Code = "UNKNOWN"
	ErrInternal Code = "INTERNAL"

	// ErrSpecValidation covers malformed bundles: spec file problems,
	// template parse errors, unknown transformers, control flow in names.
	ErrSpecValidation Code = "SPEC_VALIDATION"

	// ErrParamResolution covers missing required parameter values, failed
	// validation regexes and type mismatches between kind and value.
	ErrParamResolution Code = "PARAMETER_RESOLUTION"

	// ErrImportNotFound is raised when an import tag names a file that does
	// not exist under the bundle content root.
	ErrImportNotFound Code = "IMPORT_NOT_FOUND"

	// ErrExternalTool covers the external project generator: binary not
	// found, non-zero exit, or no project produced.
	ErrExternalTool Code = "EXTERNAL_TOOL"

	// ErrIO covers environmental filesystem failures while preparing or
	// writing the output tree.
	ErrIO Code = "IO"

	// ErrConfig covers the user-level CLI configuration file.
	ErrConfig Code = "CONFIG"
)

// Error is a structured error carrying a stable code, a human-readable
// message, optional details and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.text())
}

// text renders the message chain. A directly wrapped Error with the same
// code contributes its message without repeating the code prefix.
func (e *Error) text() string {
	if e.Err == nil {
		return e.Message
	}
	if inner, ok := e.Err.(*Error); ok && inner.Code == e.Code {
		return e.Message + ": " + inner.text()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code, so
// errors.Is(err, errors.New(ErrSpecValidation, "")) matches by category.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any)}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Details: make(map[string]any)}
}

// Wrap wraps an existing error. Returns nil when err is nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Details: make(map[string]any), Err: err}
}

// Wrapf wraps an existing error with a formatted message. Returns nil when
// err is nil.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Details: make(map[string]any), Err: err}
}

// WithDetail attaches a key/value detail and returns the error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// IsCode reports whether err (or anything it wraps) carries the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or ErrUnknown for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// DetailsOf returns the details map carried by err, or nil.
func DetailsOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
