package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/identity"
)

var _ identity.Provider = (*MockIdentityProvider)(nil)

// mockSigningKey signs the session tokens issued by MockIdentityProvider.
var mockSigningKey = []byte("mock-identity-provider-signing-key")

type mockAccount struct {
	userID   string
	password string
}

// MockIdentityProvider is an in-memory identity.Provider. It issues HS256
// session tokens and stops accepting them once the account is deleted.
type MockIdentityProvider struct {
	// Function fields for customizable behavior
	CreateAccountFn      func(ctx context.Context, email, password string) (string, error)
	SignInFn             func(ctx context.Context, email, password string) (string, error)
	VerifySessionTokenFn func(ctx context.Context, token string) (string, error)
	DeleteAccountFn      func(ctx context.Context, userID string) error
	SendPasswordResetFn  func(ctx context.Context, email string) error

	// TokenTTL controls the exp claim of issued tokens.
	TokenTTL time.Duration
	// Now is the clock used for issuing and verifying tokens.
	Now func() time.Time

	mu       sync.Mutex
	accounts map[string]mockAccount // keyed by email
	users    map[string]string      // user ID -> email
	resets   []string
}

// NewMockIdentityProvider creates a provider with no accounts.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		TokenTTL: time.Hour,
		Now:      time.Now,
		accounts: make(map[string]mockAccount),
		users:    make(map[string]string),
	}
}

// CreateAccount implements identity.Provider.
func (m *MockIdentityProvider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	if m.CreateAccountFn != nil {
		return m.CreateAccountFn(ctx, email, password)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[email]; exists {
		return "", fmt.Errorf("%w: EMAIL_EXISTS", domain.ErrDuplicateAccount)
	}

	userID := uuid.NewString()
	m.accounts[email] = mockAccount{userID: userID, password: password}
	m.users[userID] = email
	return userID, nil
}

// SignIn implements identity.Provider.
func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	if m.SignInFn != nil {
		return m.SignInFn(ctx, email, password)
	}

	m.mu.Lock()
	account, exists := m.accounts[email]
	m.mu.Unlock()

	if !exists {
		return "", fmt.Errorf("%w: EMAIL_NOT_FOUND", domain.ErrInvalidCredentials)
	}
	if account.password != password {
		return "", fmt.Errorf("%w: INVALID_PASSWORD", domain.ErrInvalidCredentials)
	}
	return m.IssueToken(account.userID)
}

// VerifySessionToken implements identity.Provider.
func (m *MockIdentityProvider) VerifySessionToken(ctx context.Context, token string) (string, error) {
	if m.VerifySessionTokenFn != nil {
		return m.VerifySessionTokenFn(ctx, token)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return mockSigningKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", domain.ErrInvalidToken)
	}

	m.mu.Lock()
	_, exists := m.users[claims.Subject]
	m.mu.Unlock()
	if !exists {
		return "", fmt.Errorf("%w: USER_NOT_FOUND", domain.ErrInvalidToken)
	}
	return claims.Subject, nil
}

// DeleteAccount implements identity.Provider.
func (m *MockIdentityProvider) DeleteAccount(ctx context.Context, userID string) error {
	if m.DeleteAccountFn != nil {
		return m.DeleteAccountFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email, exists := m.users[userID]
	if !exists {
		return fmt.Errorf("%w: USER_NOT_FOUND", domain.ErrInvalidToken)
	}
	delete(m.users, userID)
	delete(m.accounts, email)
	return nil
}

// SendPasswordReset implements identity.Provider.
func (m *MockIdentityProvider) SendPasswordReset(ctx context.Context, email string) error {
	if m.SendPasswordResetFn != nil {
		return m.SendPasswordResetFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[email]; !exists {
		return &domain.ResetError{Reason: "EMAIL_NOT_FOUND", Err: errors.New("EMAIL_NOT_FOUND")}
	}
	m.resets = append(m.resets, email)
	return nil
}

// IssueToken signs a session token for userID without checking that the
// account exists.
func (m *MockIdentityProvider) IssueToken(userID string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(mockSigningKey)
}

// UserID returns the user ID registered for email.
func (m *MockIdentityProvider) UserID(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[email]
	return account.userID, ok
}

// ResetsSent returns the emails a reset was sent to, in order.
func (m *MockIdentityProvider) ResetsSent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.resets...)
}

func (m *MockIdentityProvider) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
