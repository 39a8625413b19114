package firebase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/auth"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/identity"
	"github.com/phrazzld/account-api/internal/platform/logger"
)

// AuthClient is the subset of *auth.Client used by Provider.
type AuthClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	DeleteUser(ctx context.Context, uid string) error
}

var _ AuthClient = (*auth.Client)(nil)

// Provider implements identity.Provider with Firebase Authentication.
type Provider struct {
	auth         AuthClient
	passwords    PasswordClient
	checkRevoked bool
	logger       *slog.Logger
}

var _ identity.Provider = (*Provider)(nil)

// NewProvider creates a Provider. When checkRevoked is set, token
// verification also fails for revoked tokens and deleted or disabled users.
func NewProvider(authClient AuthClient, passwords PasswordClient, checkRevoked bool, log *slog.Logger) *Provider {
	if authClient == nil {
		panic("auth client cannot be nil")
	}
	if passwords == nil {
		panic("password client cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		auth:         authClient,
		passwords:    passwords,
		checkRevoked: checkRevoked,
		logger:       log.With(slog.String("component", "firebase_provider")),
	}
}

// CreateAccount implements identity.Provider.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	user, err := p.auth.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password))
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", fmt.Errorf("%w: %w", domain.ErrDuplicateAccount, err)
		}
		return "", fmt.Errorf("failed to create firebase user: %w", err)
	}
	if user == nil || user.UserInfo == nil || user.UID == "" {
		return "", errors.New("firebase returned a user without a UID")
	}

	logger.FromContextOrDefault(ctx, p.logger).Debug("firebase user created",
		slog.String("user_id", user.UID))
	return user.UID, nil
}

// SignIn implements identity.Provider.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, error) {
	return p.passwords.VerifyPassword(ctx, email, password)
}

// VerifySessionToken implements identity.Provider.
func (p *Provider) VerifySessionToken(ctx context.Context, token string) (string, error) {
	verify := p.auth.VerifyIDToken
	if p.checkRevoked {
		verify = p.auth.VerifyIDTokenAndCheckRevoked
	}

	decoded, err := verify(ctx, token)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if decoded == nil || decoded.UID == "" {
		return "", fmt.Errorf("%w: token has no subject", domain.ErrInvalidToken)
	}
	return decoded.UID, nil
}

// DeleteAccount implements identity.Provider.
func (p *Provider) DeleteAccount(ctx context.Context, userID string) error {
	if err := p.auth.DeleteUser(ctx, userID); err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
		}
		return fmt.Errorf("failed to delete firebase user: %w", err)
	}

	logger.FromContextOrDefault(ctx, p.logger).Debug("firebase user deleted",
		slog.String("user_id", userID))
	return nil
}

// SendPasswordReset implements identity.Provider.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	return p.passwords.SendPasswordResetEmail(ctx, email)
}
