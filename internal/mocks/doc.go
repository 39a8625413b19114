// Package mocks provides in-memory implementations of identity.Provider and
// store.ProfileStore for tests.
//
// Both mocks behave like a working backend by default: accounts can be
// created, signed in to and deleted, and issued tokens verify until the
// account is removed. Each method can be overridden with its Fn field:
//
//	provider := mocks.NewMockIdentityProvider()
//	provider.SignInFn = func(ctx context.Context, email, password string) (string, error) {
//	    return "", domain.ErrInvalidCredentials
//	}
package mocks
