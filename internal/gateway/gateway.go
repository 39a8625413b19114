// Package gateway is the single path from request handlers to the identity
// provider and the profile store. Every call runs under a deadline, is logged
// and measured, and comes back as one of the error kinds in package domain.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/account-api/internal/config"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/identity"
	"github.com/phrazzld/account-api/internal/metrics"
	"github.com/phrazzld/account-api/internal/platform/logger"
	"github.com/phrazzld/account-api/internal/redact"
	"github.com/phrazzld/account-api/internal/store"
)

// Operation names used in logs and metrics.
const (
	OpCreateAccount       = "create_account"
	OpSignIn              = "sign_in"
	OpVerifySessionToken  = "verify_session_token"
	OpDeleteAccount       = "delete_account"
	OpSendPasswordReset   = "send_password_reset"
	OpCreateProfileRecord = "create_profile_record"
	OpGetProfileRecord    = "get_profile_record"
	OpUpdateProfileRecord = "update_profile_record"
	OpDeleteProfileRecord = "delete_profile_record"
)

// DefaultTimeout bounds downstream calls when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Gateway adapts validated requests into identity provider and profile
// store calls.
type Gateway struct {
	identity identity.Provider
	profiles store.ProfileStore
	timeout  time.Duration
	recorder metrics.GatewayRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithClock overrides the clock used for the local token expiry check.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// WithTimeout overrides the configured per-call deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// New creates a Gateway. A nil recorder disables metrics and a nil logger
// falls back to slog.Default().
func New(
	provider identity.Provider,
	profiles store.ProfileStore,
	cfg config.GatewayConfig,
	recorder metrics.GatewayRecorder,
	log *slog.Logger,
	opts ...Option,
) (*Gateway, error) {
	if provider == nil {
		return nil, errors.New("identity provider cannot be nil")
	}
	if profiles == nil {
		return nil, errors.New("profile store cannot be nil")
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	g := &Gateway{
		identity: provider,
		profiles: profiles,
		timeout:  timeout,
		recorder: recorder,
		logger:   log.With(slog.String("component", "gateway")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// CreateAccount registers a new identity and returns its user ID.
func (g *Gateway) CreateAccount(ctx context.Context, email, password string) (string, error) {
	var userID string
	err := g.call(ctx, OpCreateAccount, func(ctx context.Context) error {
		var err error
		userID, err = g.identity.CreateAccount(ctx, email, password)
		return err
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

// SignIn exchanges credentials for a session token. Every failure other than
// an unavailable provider is reported as domain.ErrInvalidCredentials.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (string, error) {
	var token string
	err := g.call(ctx, OpSignIn, func(ctx context.Context) error {
		var err error
		token, err = g.identity.SignIn(ctx, email, password)
		if err == nil && token == "" {
			err = errors.New("provider returned an empty session token")
		}
		return err
	})
	if err != nil {
		if isUnavailable(err) || errors.Is(err, domain.ErrInvalidCredentials) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
	}
	return token, nil
}

// VerifySessionToken returns the user ID a session token belongs to.
// Tokens that are not structurally JWTs or whose exp claim has passed are
// rejected without contacting the provider.
func (g *Gateway) VerifySessionToken(ctx context.Context, token string) (string, error) {
	if err := g.precheckToken(token); err != nil {
		g.recorder.RecordGatewayCall(OpVerifySessionToken, outcome(err), 0)
		logger.FromContextOrDefault(ctx, g.logger).Debug("session token rejected locally",
			slog.String("reason", err.Error()))
		return "", err
	}

	var userID string
	err := g.call(ctx, OpVerifySessionToken, func(ctx context.Context) error {
		var err error
		userID, err = g.identity.VerifySessionToken(ctx, token)
		if err == nil && userID == "" {
			err = errors.New("verified token carries no user ID")
		}
		return err
	})
	if err != nil {
		if isUnavailable(err) || errors.Is(err, domain.ErrInvalidToken) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	return userID, nil
}

// DeleteAccount removes the identity record for userID.
func (g *Gateway) DeleteAccount(ctx context.Context, userID string) error {
	return g.call(ctx, OpDeleteAccount, func(ctx context.Context) error {
		return g.identity.DeleteAccount(ctx, userID)
	})
}

// SendPasswordReset asks the provider to send a reset email. Every failure is
// reported as a *domain.ResetError.
func (g *Gateway) SendPasswordReset(ctx context.Context, email string) error {
	err := g.call(ctx, OpSendPasswordReset, func(ctx context.Context) error {
		return g.identity.SendPasswordReset(ctx, email)
	})
	if err == nil {
		return nil
	}

	var resetErr *domain.ResetError
	if errors.As(err, &resetErr) {
		return err
	}
	reason := "identity provider unavailable"
	if !isUnavailable(err) {
		reason = redact.Error(err)
	}
	return &domain.ResetError{Reason: reason, Err: err}
}

// CreateProfileRecord stores the profile for a newly created account.
func (g *Gateway) CreateProfileRecord(ctx context.Context, userID string, profile *domain.Profile) error {
	return g.call(ctx, OpCreateProfileRecord, func(ctx context.Context) error {
		return g.profiles.Create(ctx, userID, profile)
	})
}

// GetProfileRecord loads the profile for userID.
func (g *Gateway) GetProfileRecord(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile *domain.Profile
	err := g.call(ctx, OpGetProfileRecord, func(ctx context.Context) error {
		var err error
		profile, err = g.profiles.Get(ctx, userID)
		if err == nil && profile == nil {
			profile = &domain.Profile{}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfileRecord applies a partial update. An empty update does not
// reach the store.
func (g *Gateway) UpdateProfileRecord(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	if update.IsEmpty() {
		logger.FromContextOrDefault(ctx, g.logger).Debug("empty profile update skipped",
			slog.String("user_id", userID))
		return nil
	}
	return g.call(ctx, OpUpdateProfileRecord, func(ctx context.Context) error {
		return g.profiles.Update(ctx, userID, update)
	})
}

// DeleteProfileRecord removes the profile for userID.
func (g *Gateway) DeleteProfileRecord(ctx context.Context, userID string) error {
	return g.call(ctx, OpDeleteProfileRecord, func(ctx context.Context) error {
		return g.profiles.Delete(ctx, userID)
	})
}

// call runs fn under the gateway deadline, then logs and records the outcome.
// A deadline hit inside the call becomes domain.ErrUnavailable; cancellation
// of the caller's own context is returned unchanged.
func (g *Gateway) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	err := fn(callCtx)
	elapsed := time.Since(start)

	if err != nil && ctx.Err() == nil && callCtx.Err() != nil && !errors.Is(err, domain.ErrUnavailable) {
		err = fmt.Errorf("%w: %s exceeded %s: %w", domain.ErrUnavailable, operation, g.timeout, err)
	}

	g.recorder.RecordGatewayCall(operation, outcome(err), elapsed)

	log := logger.FromContextOrDefault(ctx, g.logger)
	if err != nil {
		log.Warn("gateway call failed",
			slog.String("operation", operation),
			slog.String("outcome", outcome(err)),
			slog.Duration("duration", elapsed),
			slog.String("error", redact.Error(err)))
		return err
	}
	log.Debug("gateway call succeeded",
		slog.String("operation", operation),
		slog.Duration("duration", elapsed))
	return nil
}

func (g *Gateway) precheckToken(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("%w: malformed token: %w", domain.ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: unreadable exp claim: %w", domain.ErrInvalidToken, err)
	}
	if exp != nil && !g.now().Before(exp.Time) {
		return fmt.Errorf("%w: token expired at %s", domain.ErrInvalidToken, exp.Time.UTC().Format(time.RFC3339))
	}
	return nil
}

func isUnavailable(err error) bool {
	return errors.Is(err, domain.ErrUnavailable)
}

// outcome labels err for metrics and logs.
func outcome(err error) string {
	var resetErr *domain.ResetError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrDuplicateAccount):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrProfileNotFound):
		return "not_found"
	case errors.As(err, &resetErr):
		return "reset_failed"
	default:
		return "error"
	}
}
