// Package apperr defines the error taxonomy surfaced by the entity layer.
// Every failure leaving a service wraps exactly one of these sentinels so
// handlers can map it to a status code with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a payload that failed schema validation.
	ErrValidation = errors.New("validation failed")
	// ErrAuthorization marks an operation denied by an access rule.
	ErrAuthorization = errors.New("operation not permitted")
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrAuth marks a credential failure during sign-in or sign-up.
	ErrAuth = errors.New("authentication failed")
	// ErrStore marks an opaque backing-store failure.
	ErrStore = errors.New("store failure")
	// ErrSizeLimit marks an upload that exceeds the allowed size.
	ErrSizeLimit = errors.New("size limit exceeded")
)

// Validationf builds a validation error with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Authorizationf builds an authorization error with a formatted detail message.
func Authorizationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

// NotFoundf builds a not-found error with a formatted detail message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Authf builds an authentication error with a formatted detail message.
func Authf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuth, fmt.Sprintf(format, args...))
}

// Store wraps a backing-store failure.
func Store(err error) error {
	return fmt.Errorf("%w: %v", ErrStore, err)
}
