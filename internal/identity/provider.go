// Package identity defines the contract for the external identity provider
// that owns accounts, passwords and session tokens. The service never issues
// or verifies tokens itself; it only relays these calls.
package identity

import "context"

// Provider is the external identity provider.
//
// Implementations wrap their errors with the sentinel errors of package
// domain so callers can match them with errors.Is:
//   - CreateAccount: domain.ErrDuplicateAccount when the email is taken.
//   - SignIn: domain.ErrInvalidCredentials for any rejected sign-in.
//   - VerifySessionToken: domain.ErrInvalidToken for malformed, expired,
//     revoked or unverifiable tokens.
//   - DeleteAccount: domain.ErrInvalidToken when the account no longer exists.
//   - SendPasswordReset: *domain.ResetError carrying the provider's reason.
type Provider interface {
	// CreateAccount registers email/password and returns the new user ID.
	CreateAccount(ctx context.Context, email, password string) (string, error)

	// SignIn exchanges email/password for a session token.
	SignIn(ctx context.Context, email, password string) (string, error)

	// VerifySessionToken returns the user ID the token was issued to.
	VerifySessionToken(ctx context.Context, token string) (string, error)

	// DeleteAccount removes the identity record for userID.
	DeleteAccount(ctx context.Context, userID string) error

	// SendPasswordReset asks the provider to email a reset link.
	SendPasswordReset(ctx context.Context, email string) error
}
