package domain

import (
	"errors"
	"fmt"
)

// Gateway error kinds. Adapters wrap provider errors with these sentinels so
// the HTTP boundary can match them with errors.Is.
var (
	// ErrValidation is returned when a request fails shape validation.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateAccount is returned when an account already exists for an email.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrInvalidCredentials is returned for every password sign-in failure.
	// Wrong password and unknown account are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a session token is malformed, expired,
	// revoked or otherwise cannot be verified.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrProfileNotFound is returned when no profile record exists for a user.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUnavailable is returned when a downstream call did not complete
	// before its deadline.
	ErrUnavailable = errors.New("upstream unavailable")
)

// ValidationError describes a single request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the underlying error kind.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// ResetError is returned when the identity provider refuses to send a
// password reset email. Reason carries the provider's own explanation.
type ResetError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ResetError) Error() string {
	return "password reset failed: " + e.Reason
}

// Unwrap returns the provider error, if any.
func (e *ResetError) Unwrap() error {
	return e.Err
}
