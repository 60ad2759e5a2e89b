package errors

// Error codes for categorizing errors across the middleware client.
const (
	// CodeUnknown indicates an unknown error occurred.
	CodeUnknown = "UNKNOWN"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeInvalidArgument indicates the caller supplied an invalid argument.
	CodeInvalidArgument = "INVALID_ARGUMENT"

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// CodeUnavailable indicates the transport or a peer is unavailable.
	CodeUnavailable = "UNAVAILABLE"

	// CodeTimeout indicates an operation timed out.
	CodeTimeout = "TIMEOUT"

	// CodeTransportError indicates a pub/sub transport operation failed.
	CodeTransportError = "TRANSPORT_ERROR"

	// CodeSerializationError indicates wire encoding or decoding failed.
	CodeSerializationError = "SERIALIZATION_ERROR"

	// CodeConfigError indicates a configuration error.
	CodeConfigError = "CONFIG_ERROR"
)

// ErrorCategory represents a high-level error category.
type ErrorCategory string

const (
	// CategoryCaller indicates a caller error (bad handle, bad argument).
	CategoryCaller ErrorCategory = "CALLER_ERROR"

	// CategoryTransport indicates a transport-related error.
	CategoryTransport ErrorCategory = "TRANSPORT_ERROR"

	// CategoryInternal indicates an internal error.
	CategoryInternal ErrorCategory = "INTERNAL_ERROR"
)

// GetCategory returns the category for an error code.
func GetCategory(code string) ErrorCategory {
	switch code {
	case CodeNotFound, CodeInvalidArgument, CodeValidation, CodeConfigError:
		return CategoryCaller
	case CodeUnavailable, CodeTimeout, CodeTransportError:
		return CategoryTransport
	default:
		return CategoryInternal
	}
}

// IsRetryable returns true if an error with the given code may be retried.
// Caller errors are never retryable: the same call fails the same way.
func IsRetryable(code string) bool {
	switch code {
	case CodeUnavailable, CodeTimeout, CodeTransportError:
		return true
	default:
		return false
	}
}
