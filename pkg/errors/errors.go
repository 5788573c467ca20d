// Package errors provides structured error types for logpushctl.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies specific error conditions
type ErrorCode string

const (
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeScopeNotFound ErrorCode = "SCOPE_NOT_FOUND"
	ErrCodeObject        ErrorCode = "OBJECT_UNAVAILABLE"
	ErrCodeCorruptStream ErrorCode = "CORRUPT_STREAM"
	ErrCodeInvalidCursor ErrorCode = "INVALID_CURSOR"
	ErrCodeStorage       ErrorCode = "STORAGE_ERROR"
)

// Error is the base error type for logpushctl
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Wrap creates a new error wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a single detail to an error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.Details[key] = value
	return e
}

// ScopeNotFound creates an error for an environment/date prefix with no objects.
func ScopeNotFound(environment, date string) *Error {
	scope := environment
	if date != "" {
		scope = environment + "/" + date
	}
	return &Error{
		Code:    ErrCodeScopeNotFound,
		Message: fmt.Sprintf("no log objects found under %q", scope),
		Details: map[string]interface{}{
			"environment": environment,
			"date":        date,
		},
	}
}

// ObjectUnavailable creates an error for a failed object fetch.
func ObjectUnavailable(key string, cause error) *Error {
	return &Error{
		Code:    ErrCodeObject,
		Message: fmt.Sprintf("failed to fetch object %q", key),
		Cause:   cause,
		Details: map[string]interface{}{
			"key": key,
		},
	}
}

// CorruptStream creates an error for a decompression failure mid-object.
// Lines already produced before the failure remain valid.
func CorruptStream(key string, line int, cause error) *Error {
	return &Error{
		Code:    ErrCodeCorruptStream,
		Message: fmt.Sprintf("object %q ended early at line %d", key, line),
		Cause:   cause,
		Details: map[string]interface{}{
			"key":  key,
			"line": line,
		},
	}
}

// InvalidCursor creates an error for a cursor that cannot be resumed.
func InvalidCursor(reason string) *Error {
	return &Error{
		Code:    ErrCodeInvalidCursor,
		Message: fmt.Sprintf("invalid cursor: %s", reason),
		Details: make(map[string]interface{}),
	}
}

// ValidationError creates a validation error
func ValidationError(message string, details map[string]interface{}) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: message,
		Details: details,
	}
}

// StorageError creates an error for a storage backend failure
func StorageError(backend string, operation string, err error) *Error {
	return &Error{
		Code:    ErrCodeStorage,
		Message: fmt.Sprintf("storage backend %s failed during %s", backend, operation),
		Cause:   err,
		Details: map[string]interface{}{
			"backend":   backend,
			"operation": operation,
		},
	}
}

// Is checks if the error (or any error in its chain) matches the given code
func Is(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
