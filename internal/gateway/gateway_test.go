package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/account-api/internal/config"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	operation string
	outcome   string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) RecordGatewayCall(operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{operation: operation, outcome: outcome})
}

func (r *fakeRecorder) last() recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return recordedCall{}
	}
	return r.calls[len(r.calls)-1]
}

type fixture struct {
	gateway  *Gateway
	provider *mocks.MockIdentityProvider
	profiles *mocks.MockProfileStore
	recorder *fakeRecorder
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	provider := mocks.NewMockIdentityProvider()
	profiles := mocks.NewMockProfileStore()
	recorder := &fakeRecorder{}

	g, err := New(provider, profiles, config.GatewayConfig{TimeoutSeconds: 5}, recorder, nil, opts...)
	require.NoError(t, err)

	return &fixture{gateway: g, provider: provider, profiles: profiles, recorder: recorder}
}

func strPtr(s string) *string { return &s }

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, mocks.NewMockProfileStore(), config.GatewayConfig{}, nil, nil)
	assert.Error(t, err)

	_, err = New(mocks.NewMockIdentityProvider(), nil, config.GatewayConfig{}, nil, nil)
	assert.Error(t, err)

	g, err := New(mocks.NewMockIdentityProvider(), mocks.NewMockProfileStore(), config.GatewayConfig{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, g.timeout)
}

func TestCreateAccountAndSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	userID, err := f.gateway.CreateAccount(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, userID)
	assert.Equal(t, recordedCall{OpCreateAccount, "ok"}, f.recorder.last())

	_, err = f.gateway.CreateAccount(ctx, "a@x.com", "pw2")
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)
	assert.Equal(t, recordedCall{OpCreateAccount, "duplicate"}, f.recorder.last())

	token, err := f.gateway.SignIn(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = f.gateway.SignIn(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, recordedCall{OpSignIn, "invalid_credentials"}, f.recorder.last())
}

func TestSignInNormalizesProviderErrors(t *testing.T) {
	f := newFixture(t)

	f.provider.SignInFn = func(ctx context.Context, email, password string) (string, error) {
		return "", errors.New("TOO_MANY_ATTEMPTS_TRY_LATER")
	}
	_, err := f.gateway.SignIn(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	f.provider.SignInFn = func(ctx context.Context, email, password string) (string, error) {
		return "", nil
	}
	_, err = f.gateway.SignIn(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCallTimeoutBecomesUnavailable(t *testing.T) {
	f := newFixture(t, WithTimeout(20*time.Millisecond))

	f.provider.SignInFn = func(ctx context.Context, email, password string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	_, err := f.gateway.SignIn(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, recordedCall{OpSignIn, "unavailable"}, f.recorder.last())
}

func TestCallerCancellationIsNotUnavailable(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	f.profiles.GetFn = func(ctx context.Context, userID string) (*domain.Profile, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := f.gateway.GetProfileRecord(ctx, "uid-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, recordedCall{OpGetProfileRecord, "canceled"}, f.recorder.last())
}

func TestVerifySessionToken(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid token", func(t *testing.T) {
		f := newFixture(t, WithClock(func() time.Time { return now }))
		f.provider.Now = func() time.Time { return now }

		userID, err := f.provider.CreateAccount(context.Background(), "a@x.com", "pw")
		require.NoError(t, err)
		token, err := f.provider.IssueToken(userID)
		require.NoError(t, err)

		got, err := f.gateway.VerifySessionToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("malformed token is rejected locally", func(t *testing.T) {
		f := newFixture(t)
		called := false
		f.provider.VerifySessionTokenFn = func(ctx context.Context, token string) (string, error) {
			called = true
			return "uid", nil
		}

		_, err := f.gateway.VerifySessionToken(context.Background(), "garbage")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
		assert.False(t, called, "provider should not be contacted")
		assert.Equal(t, recordedCall{OpVerifySessionToken, "invalid_token"}, f.recorder.last())
	})

	t.Run("expired token is rejected locally", func(t *testing.T) {
		f := newFixture(t, WithClock(func() time.Time { return now }))
		f.provider.Now = func() time.Time { return now.Add(-2 * time.Hour) }
		called := false
		f.provider.VerifySessionTokenFn = func(ctx context.Context, token string) (string, error) {
			called = true
			return "uid", nil
		}

		token, err := f.provider.IssueToken("uid-1")
		require.NoError(t, err)

		_, err = f.gateway.VerifySessionToken(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
		assert.False(t, called)
	})

	t.Run("deleted account", func(t *testing.T) {
		f := newFixture(t)
		token, err := f.provider.IssueToken("uid-gone")
		require.NoError(t, err)

		_, err = f.gateway.VerifySessionToken(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("unclassified provider error", func(t *testing.T) {
		f := newFixture(t)
		token, err := f.provider.IssueToken("uid-1")
		require.NoError(t, err)
		f.provider.VerifySessionTokenFn = func(ctx context.Context, token string) (string, error) {
			return "", errors.New("certificate fetch failed")
		}

		_, err = f.gateway.VerifySessionToken(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestSendPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.provider.CreateAccount(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, f.gateway.SendPasswordReset(ctx, "a@x.com"))
	assert.Equal(t, []string{"a@x.com"}, f.provider.ResetsSent())

	err = f.gateway.SendPasswordReset(ctx, "nobody@x.com")
	var resetErr *domain.ResetError
	require.ErrorAs(t, err, &resetErr)
	assert.Equal(t, "EMAIL_NOT_FOUND", resetErr.Reason)
	assert.Equal(t, recordedCall{OpSendPasswordReset, "reset_failed"}, f.recorder.last())

	f.provider.SendPasswordResetFn = func(ctx context.Context, email string) error {
		return errors.New("quota exceeded")
	}
	err = f.gateway.SendPasswordReset(ctx, "a@x.com")
	require.ErrorAs(t, err, &resetErr)
	assert.Equal(t, "quota exceeded", resetErr.Reason)
}

func TestSendPasswordResetTimeout(t *testing.T) {
	f := newFixture(t, WithTimeout(20*time.Millisecond))
	f.provider.SendPasswordResetFn = func(ctx context.Context, email string) error {
		<-ctx.Done()
		return ctx.Err()
	}

	err := f.gateway.SendPasswordReset(context.Background(), "a@x.com")
	var resetErr *domain.ResetError
	require.ErrorAs(t, err, &resetErr)
	assert.Equal(t, "identity provider unavailable", resetErr.Reason)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestProfileRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gateway.GetProfileRecord(ctx, "uid-1")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	assert.Equal(t, recordedCall{OpGetProfileRecord, "not_found"}, f.recorder.last())

	err = f.gateway.UpdateProfileRecord(ctx, "uid-1", domain.ProfileUpdate{Username: strPtr("a")})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	profile := domain.NewProfile(domain.Account{Email: "a@x.com", Username: "alice", FullName: "Alice A"})
	require.NoError(t, f.gateway.CreateProfileRecord(ctx, "uid-1", profile))

	require.NoError(t, f.gateway.UpdateProfileRecord(ctx, "uid-1", domain.ProfileUpdate{FullName: strPtr("Alice B")}))

	got, err := f.gateway.GetProfileRecord(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Alice B", got.FullName)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, f.gateway.DeleteProfileRecord(ctx, "uid-1"))
	require.NoError(t, f.gateway.DeleteProfileRecord(ctx, "uid-1"), "deleting a missing record is not an error")
	assert.Equal(t, 0, f.profiles.Len())
}

func TestEmptyUpdateSkipsStore(t *testing.T) {
	f := newFixture(t)
	called := false
	f.profiles.UpdateFn = func(ctx context.Context, userID string, update domain.ProfileUpdate) error {
		called = true
		return nil
	}

	require.NoError(t, f.gateway.UpdateProfileRecord(context.Background(), "uid-1", domain.ProfileUpdate{}))
	assert.False(t, called)
}

func TestGetProfileRecordNilBecomesEmpty(t *testing.T) {
	f := newFixture(t)
	f.profiles.GetFn = func(ctx context.Context, userID string) (*domain.Profile, error) {
		return nil, nil
	}

	got, err := f.gateway.GetProfileRecord(context.Background(), "uid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsEmpty())
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	userID, err := f.gateway.CreateAccount(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.NoError(t, f.gateway.DeleteAccount(ctx, userID))

	_, ok := f.provider.UserID("a@x.com")
	assert.False(t, ok)

	err = f.gateway.DeleteAccount(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{domain.ErrUnavailable, "unavailable"},
		{context.Canceled, "canceled"},
		{domain.ErrDuplicateAccount, "duplicate"},
		{domain.ErrInvalidCredentials, "invalid_credentials"},
		{domain.ErrInvalidToken, "invalid_token"},
		{domain.ErrProfileNotFound, "not_found"},
		{&domain.ResetError{Reason: "x"}, "reset_failed"},
		{errors.New("boom"), "error"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, outcome(tc.err))
		})
	}
}
