// Package firestore implements store.ProfileStore on Cloud Firestore. Each
// profile is one document in a collection, keyed by the identity provider's
// user ID.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/platform/logger"
	"github.com/phrazzld/account-api/internal/store"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection holds profile documents when none is configured.
const DefaultCollection = "users"

// profileDocument is the stored shape of a profile. created_at is assigned by
// the server when the document is written.
type profileDocument struct {
	Email     string    `firestore:"email,omitempty"`
	Username  string    `firestore:"username,omitempty"`
	FullName  string    `firestore:"full_name,omitempty"`
	CreatedAt time.Time `firestore:"created_at,serverTimestamp"`
}

func newProfileDocument(p *domain.Profile) profileDocument {
	return profileDocument{
		Email:    p.Email,
		Username: p.Username,
		FullName: p.FullName,
	}
}

func (d profileDocument) toDomain() *domain.Profile {
	return &domain.Profile{
		Email:     d.Email,
		Username:  d.Username,
		FullName:  d.FullName,
		CreatedAt: d.CreatedAt,
	}
}

// ProfileStore implements store.ProfileStore using a Firestore collection.
type ProfileStore struct {
	collection *firestore.CollectionRef
	logger     *slog.Logger
}

var _ store.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates a ProfileStore over the named collection.
func NewProfileStore(client *firestore.Client, collection string, log *slog.Logger) *ProfileStore {
	if client == nil {
		panic("firestore client cannot be nil")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	if log == nil {
		log = slog.Default()
	}
	return &ProfileStore{
		collection: client.Collection(collection),
		logger:     log.With(slog.String("component", "firestore_profile_store")),
	}
}

// Create implements store.ProfileStore.Create.
func (s *ProfileStore) Create(ctx context.Context, userID string, profile *domain.Profile) error {
	if profile == nil {
		return store.ProfileError("create", errors.New("profile cannot be nil"))
	}

	if _, err := s.collection.Doc(userID).Set(ctx, newProfileDocument(profile)); err != nil {
		return store.ProfileError("create", mapError(err))
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("profile document written",
		slog.String("user_id", userID))
	return nil
}

// Get implements store.ProfileStore.Get.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	snap, err := s.collection.Doc(userID).Get(ctx)
	if err != nil {
		return nil, store.ProfileError("get", mapError(err))
	}
	if !snap.Exists() {
		return nil, store.ProfileError("get", domain.ErrProfileNotFound)
	}

	var doc profileDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, store.ProfileError("get", fmt.Errorf("failed to decode profile document: %w", err))
	}
	return doc.toDomain(), nil
}

// Update implements store.ProfileStore.Update.
func (s *ProfileStore) Update(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil
	}

	updates := make([]firestore.Update, 0, len(fields))
	for _, f := range fields {
		updates = append(updates, firestore.Update{Path: f.Name, Value: f.Value})
	}

	if _, err := s.collection.Doc(userID).Update(ctx, updates); err != nil {
		return store.ProfileError("update", mapError(err))
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("profile document updated",
		slog.String("user_id", userID),
		slog.Int("fields", len(updates)))
	return nil
}

// Delete implements store.ProfileStore.Delete. Firestore deletes of missing
// documents succeed.
func (s *ProfileStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.collection.Doc(userID).Delete(ctx); err != nil {
		return store.ProfileError("delete", mapError(err))
	}
	return nil
}

// mapError translates Firestore gRPC status codes into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %w", domain.ErrProfileNotFound, err)
	case codes.DeadlineExceeded, codes.Unavailable:
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return err
}
