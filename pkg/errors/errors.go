// Package errors provides structured error types for the orgchart application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP host and the viewer
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages for placeholders
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures at the configuration boundary
//   - FETCH_FAILED, TIMEOUT, NETWORK_ERROR: Hierarchy load failures
//   - EMPTY_DATA: A load succeeded but returned no root
//   - RENDER_UNAVAILABLE: An optional drawing backend is missing
//   - STRUCTURAL_INTEGRITY: Malformed hierarchy input (cycles, duplicate ids)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidViewMode, "unknown view mode: %s", mode)
//	if errors.Is(err, errors.ErrCodeInvalidViewMode) {
//	    // Reject at the boundary
//	}
//
//	// Wrap a transport failure
//	err := errors.FetchError("42", cause)
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidViewMode Code = "INVALID_VIEW_MODE"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Hierarchy load errors
	ErrCodeFetchFailed Code = "FETCH_FAILED"
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeEmptyData   Code = "EMPTY_DATA"

	// Data and rendering errors
	ErrCodeStructural        Code = "STRUCTURAL_INTEGRITY"
	ErrCodeRenderUnavailable Code = "RENDER_UNAVAILABLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's chain carries the given code.
// Unlike a plain errors.As lookup it keeps unwrapping past an outer *Error,
// so a FETCH_FAILED wrapping a TIMEOUT matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// =============================================================================
// Taxonomy constructors
// =============================================================================

// FetchError reports a failed hierarchy load for an organization. A cause
// that exceeded its deadline is additionally tagged ErrCodeTimeout.
func FetchError(orgID string, cause error) *Error {
	if errors.Is(cause, context.DeadlineExceeded) {
		cause = Wrap(ErrCodeTimeout, cause, "timeout")
	}
	return Wrap(ErrCodeFetchFailed, cause, "load hierarchy for organization %q", orgID)
}

// EmptyData reports a load that succeeded but returned no root node.
func EmptyData(orgID string) *Error {
	return New(ErrCodeEmptyData, "organization %q has no hierarchy data", orgID)
}

// RenderUnavailable reports that an optional drawing backend could not be
// initialized. hint is shown to the user verbatim.
func RenderUnavailable(backend, hint string, cause error) *Error {
	return &Error{
		Code:    ErrCodeRenderUnavailable,
		Message: fmt.Sprintf("%s backend unavailable: %s", backend, hint),
		Cause:   cause,
	}
}

// Structural reports malformed hierarchy input such as a cycle or a
// duplicate node id.
func Structural(format string, args ...any) *Error {
	return New(ErrCodeStructural, format, args...)
}
