// Package errors provides structured error handling with cause propagation and
// process exit-code mapping.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error for exit-status mapping and
// user-facing reporting.
type ErrorType string

const (
	// TypeValidation indicates invalid CLI input (exit 2)
	TypeValidation ErrorType = "validation"
	// TypeUnsupported indicates an incompatible host environment (informational, exit 0)
	TypeUnsupported ErrorType = "unsupported"
	// TypeResolution indicates an address-resolution failure (exit 3)
	TypeResolution ErrorType = "resolution"
	// TypeLaunch indicates a failure starting or running the kit (exit 4)
	TypeLaunch ErrorType = "launch"
	// TypeShutdown indicates a failure during the interrupt-triggered close (exit 5)
	TypeShutdown ErrorType = "shutdown"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit status for this error type.
func (e *Error) ExitCode() int {
	switch e.Type {
	case TypeValidation:
		return 2
	case TypeUnsupported:
		return 0
	case TypeResolution:
		return 3
	case TypeLaunch:
		return 4
	case TypeShutdown:
		return 5
	default:
		return 1
	}
}

// WithCause attaches an underlying cause and returns the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithContext attaches a key-value pair and returns the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ValidationError creates a new validation error (exit 2).
func ValidationError(message string) *Error {
	return &Error{Type: TypeValidation, Message: message}
}

// UnsupportedError creates a new environment-incompatibility error (exit 0).
func UnsupportedError(message string) *Error {
	return &Error{Type: TypeUnsupported, Message: message}
}

// ResolutionError creates a new address-resolution error (exit 3).
func ResolutionError(message string) *Error {
	return &Error{Type: TypeResolution, Message: message}
}

// LaunchError creates a new launch/runtime error (exit 4).
func LaunchError(message string) *Error {
	return &Error{Type: TypeLaunch, Message: message}
}

// ShutdownError creates a new shutdown error (exit 5).
func ShutdownError(message string) *Error {
	return &Error{Type: TypeShutdown, Message: message}
}

// IsType reports whether err is (or wraps) an Error of the given type.
func IsType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// ExitCode returns the exit status for any error. Errors outside this
// package's taxonomy map to 1; nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return 1
}
