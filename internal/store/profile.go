package store

import (
	"context"

	"github.com/phrazzld/account-api/internal/domain"
)

// ProfileStore defines the interface for profile record persistence.
type ProfileStore interface {
	// Create writes the profile record for userID, replacing any existing
	// record. The store assigns CreatedAt.
	Create(ctx context.Context, userID string, profile *domain.Profile) error

	// Get retrieves the profile record for userID.
	// Returns domain.ErrProfileNotFound if no record exists. A record that
	// exists but holds no fields is returned as an empty, non-nil Profile.
	Get(ctx context.Context, userID string) (*domain.Profile, error)

	// Update applies the fields present in update to the record for userID.
	// Returns domain.ErrProfileNotFound if no record exists.
	Update(ctx context.Context, userID string, update domain.ProfileUpdate) error

	// Delete removes the record for userID. Deleting a missing record is not
	// an error.
	Delete(ctx context.Context, userID string) error
}
