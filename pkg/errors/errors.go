// Package errors provides structured error types for pathtrace.
//
// Every failure the core can report carries a machine-readable [Code], so the
// CLI and the HTTP API can map it to an exit message or a status without
// string matching:
//   - INVALID_FORMAT: a graph or heuristic structure could not be normalized
//   - UNKNOWN_NODE: a start or goal node is absent from the graph
//   - INVALID_*: other input validation failures
//   - NETWORK_ERROR, TIMEOUT: failures talking to Redis or Neo4j
//   - INTERNAL_ERROR: unexpected internal errors
//
// An unreachable goal is not an error. Searches report it through an empty
// path and an infinite cost.
//
// # Usage
//
//	err := errors.Format("node %q: weight must be non-negative", id)
//	if errors.IsFormatError(err) {
//	    // reject the input file
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "query %s", uri)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidAlgorithm Code = "INVALID_ALGORITHM"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeUnknownNode  Code = "UNKNOWN_NODE"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// Format creates an INVALID_FORMAT error. It is returned when a graph or
// heuristic structure does not match any accepted encoding.
func Format(format string, args ...any) *Error {
	return New(ErrCodeInvalidFormat, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsFormatError reports whether err is an INVALID_FORMAT error.
func IsFormatError(err error) bool {
	return Is(err, ErrCodeInvalidFormat)
}

// IsUnknownNode reports whether err is an UnknownNodeError or carries the
// UNKNOWN_NODE code.
func IsUnknownNode(err error) bool {
	var u *UnknownNodeError
	if errors.As(err, &u) {
		return true
	}
	return Is(err, ErrCodeUnknownNode)
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var u *UnknownNodeError
	if errors.As(err, &u) {
		return ErrCodeUnknownNode
	}
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
	var u *UnknownNodeError
	if errors.As(err, &u) {
		return u.message()
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// UnknownNodeError reports search endpoints that are not part of the graph.
// Available lists every node the graph knows, sorted, so callers can suggest
// valid choices.
type UnknownNodeError struct {
	Missing   []string // Endpoints not found, in start, goal order
	Available []string // All valid node identifiers
}

// Error implements the error interface.
func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeUnknownNode, e.message())
}

// Code returns the error code for this error type.
func (e *UnknownNodeError) Code() Code {
	return ErrCodeUnknownNode
}

func (e *UnknownNodeError) message() string {
	if len(e.Missing) == 1 {
		return fmt.Sprintf("node %q not in graph", e.Missing[0])
	}
	return fmt.Sprintf("nodes %q not in graph", e.Missing)
}
