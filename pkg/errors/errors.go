package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the gateway, the adapter and the page flow

var (
	// ErrInvalidInput indicates a payload failed schema validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidIdentifier indicates a path identifier is not a positive integer
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrBackendUnavailable indicates the external backend could not be reached
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrBackendRejected indicates the external backend answered with a non-2xx status
	ErrBackendRejected = errors.New("backend rejected request")

	// ErrStaleNavigation indicates a page was opened without its predecessor state
	ErrStaleNavigation = errors.New("stale navigation")

	// ErrNotFound indicates a requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// InvalidIdentifierError creates an invalid identifier error for a named parameter
func InvalidIdentifierError(param, value string) error {
	return fmt.Errorf("%s=%q: %w", param, value, ErrInvalidIdentifier)
}

// BackendUnavailableError wraps a transport failure for an upstream operation
func BackendUnavailableError(operation string, cause error) error {
	return fmt.Errorf("%s: %w: %w", operation, ErrBackendUnavailable, cause)
}

// StaleNavigationError creates a stale navigation error naming the missing record
func StaleNavigationError(key string) error {
	return fmt.Errorf("missing %s: %w", key, ErrStaleNavigation)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
