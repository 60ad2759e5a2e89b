package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Common sentinel errors for quick checks
var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")

	// ErrCallbackNotFound is returned when a removal addresses a callback
	// handle that is not currently registered.
	ErrCallbackNotFound = errors.New("callback doesn't exist")

	// ErrParameterNotInEvent is returned when an event does not carry a
	// new or changed value for the requested parameter.
	ErrParameterNotInEvent = errors.New("parameter is not part of parameter event")

	// ErrNotConnected is returned when the transport has not been started.
	ErrNotConnected = errors.New("not connected")

	// ErrInvalidConfig is returned when a configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timeout")
)

// Error is the base interface for all custom errors in the system.
// It extends the standard error interface with additional context.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
	stack   []uintptr
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// Stack returns the captured stack trace.
func (e *BaseError) Stack() []uintptr {
	return e.stack
}

// captureStack captures the current stack trace.
func captureStack(skip int) []uintptr {
	const maxDepth = 32
	stack := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, stack)
	return stack[:n]
}

// StackTrace returns a formatted stack trace string.
func (e *BaseError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}

	var buf strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return buf.String()
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	*BaseError
	Resource string
	Key      string
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{
		BaseError: &BaseError{
			code:    CodeNotFound,
			message: fmt.Sprintf("%s not found", resource),
			stack:   captureStack(1),
		},
		Resource: resource,
		Key:      key,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s '%s' not found", e.Resource, e.Key)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// ValidationError represents an input validation error.
type ValidationError struct {
	*BaseError
	Field string
	Value interface{}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			code:    CodeValidation,
			message: message,
			stack:   captureStack(1),
		},
		Field: field,
		Value: value,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.message)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// TransportError represents a pub/sub transport failure.
type TransportError struct {
	*BaseError
	Topic string
}

// NewTransportError creates a new transport error.
func NewTransportError(topic, message string, cause error) *TransportError {
	if message == "" {
		message = "transport error"
	}
	return &TransportError{
		BaseError: &BaseError{
			code:    CodeTransportError,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Topic: topic,
	}
}

// SerializationError represents a wire encode/decode failure.
type SerializationError struct {
	*BaseError
	What string
}

// NewSerializationError creates a new serialization error.
func NewSerializationError(what string, cause error) *SerializationError {
	return &SerializationError{
		BaseError: &BaseError{
			code:    CodeSerializationError,
			message: fmt.Sprintf("failed to encode/decode %s", what),
			cause:   cause,
			stack:   captureStack(1),
		},
		What: what,
	}
}

// InternalError represents an internal error.
type InternalError struct {
	*BaseError
	Operation string
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *InternalError {
	if message == "" {
		message = "internal error"
	}
	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
	}
}

// WithOperation sets the operation context.
func (e *InternalError) WithOperation(op string) *InternalError {
	e.Operation = op
	return e
}

// Wrap wraps an error with additional context.
// If the error is already one of our custom types, it preserves the code
// and adds the cause chain. Otherwise, it creates an InternalError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(Error); ok {
		return &BaseError{
			code:    e.Code(),
			message: message,
			cause:   err,
			stack:   captureStack(1),
		}
	}

	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   err,
			stack:   captureStack(1),
		},
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// New creates a new error with a message.
func New(message string) error {
	return &BaseError{
		code:    CodeInternal,
		message: message,
		stack:   captureStack(1),
	}
}

// Newf creates a new error with a formatted message.
func Newf(format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...))
}
