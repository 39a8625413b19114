package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/account-api/internal/api/shared"
	"github.com/phrazzld/account-api/internal/domain"
)

// Client-facing messages.
const (
	msgInvalidToken       = "Invalid or missing ID token"
	msgProfileNotFound    = "User profile not found"
	msgInvalidCredentials = "Invalid Credentials"
	msgDuplicateAccount   = "Account already created for the email"
	msgResetFailedPrefix  = "Password reset email could not be sent: "
	msgUnavailable        = "Service temporarily unavailable, please retry"
	msgUnexpected         = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var resetErr *domain.ResetError

	switch {
	// Deadline exceeded downstream wins over whatever wrapped it
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable

	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrDuplicateAccount),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.As(err, &resetErr):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return msgUnexpected
	}

	var validationErr *domain.ValidationError
	var resetErr *domain.ResetError

	switch {
	case errors.Is(err, domain.ErrUnavailable):
		return msgUnavailable

	// Validation messages are built from field names and tags only
	case errors.As(err, &validationErr):
		return validationErr.Error()

	case errors.Is(err, domain.ErrInvalidToken):
		return msgInvalidToken

	case errors.Is(err, domain.ErrProfileNotFound):
		return msgProfileNotFound

	case errors.Is(err, domain.ErrDuplicateAccount):
		return msgDuplicateAccount

	case errors.Is(err, domain.ErrInvalidCredentials):
		return msgInvalidCredentials

	case errors.As(err, &resetErr):
		return msgResetFailedPrefix + resetErr.Reason

	default:
		return msgUnexpected
	}
}

// HandleAPIError writes the status and safe message for err, logging the
// redacted details. Rejected tokens are logged at WARN.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
