// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-core.

package api

import "fmt"

// Common errors used across the library.
var (
	// ErrNoCapacity reports that a pool's free list is empty and the growth
	// strategy added nothing. It is a normal backpressure signal, never a
	// program fault; callers decide whether to drop, queue, or fail upward.
	ErrNoCapacity = fmt.Errorf("no capacity")

	// ErrPoolDestroyed reports an operation against a pool that has already
	// completed its shutdown protocol.
	ErrPoolDestroyed = fmt.Errorf("pool is destroyed")

	ErrTransportClosed = fmt.Errorf("transport is closed")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotSupported    = fmt.Errorf("operation not supported")
	ErrNotFound        = fmt.Errorf("resource not found")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeDestroyed
	ErrCodeNotSupported
	ErrCodeNotFound
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
