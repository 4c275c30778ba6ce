package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

const (
	// ErrConfiguration marks an unresolvable setup problem, such as a
	// hierarchical task with no coordinator. Raised before any session exists.
	ErrConfiguration ErrorCode = "CONFIGURATION"
	// ErrNoCandidates marks an empty agent search result. Raised before any
	// session exists.
	ErrNoCandidates ErrorCode = "NO_CANDIDATES"
	// ErrProtocolExecution marks a failure inside a protocol step. Captured
	// at the session boundary, never re-raised to the orchestration caller.
	ErrProtocolExecution ErrorCode = "PROTOCOL_EXECUTION"
	// ErrTimeout marks a task deadline expiring mid-protocol.
	ErrTimeout ErrorCode = "TIMEOUT"
)

// Error is a structured error with code, message and optional cause.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// GetErrorCode extracts the error code from an error, unwrapping as needed.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
