package errors

import "errors"

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrNotFound)
}

// IsCallbackNotFound checks if an error indicates an unknown callback handle.
func IsCallbackNotFound(err error) bool {
	return errors.Is(err, ErrCallbackNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsTransport checks if an error originated in the pub/sub transport.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsSerialization checks if an error is a wire encode/decode failure.
func IsSerialization(err error) bool {
	if err == nil {
		return false
	}

	var serErr *SerializationError
	return errors.As(err, &serErr)
}

// GetCode extracts the error code from an error, or CodeUnknown for
// errors outside this package's taxonomy.
func GetCode(err error) string {
	if err == nil {
		return ""
	}

	var e Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return CodeUnknown
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need both this package and stdlib errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
