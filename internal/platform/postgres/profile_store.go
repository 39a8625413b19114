package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/platform/logger"
	"github.com/phrazzld/account-api/internal/redact"
	"github.com/phrazzld/account-api/internal/store"
)

// PostgresProfileStore implements the store.ProfileStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProfileStore struct {
	db     DBTX
	logger *slog.Logger
}

// Ensure PostgresProfileStore implements store.ProfileStore interface
var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// NewPostgresProfileStore creates a new PostgreSQL implementation of the
// ProfileStore interface. If logger is nil, a default logger will be used.
func NewPostgresProfileStore(db DBTX, logger *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProfileStore{
		db:     db,
		logger: logger.With(slog.String("component", "profile_store")),
	}
}

// Create implements store.ProfileStore.Create.
// An existing row for userID is replaced and its created_at reset.
func (s *PostgresProfileStore) Create(ctx context.Context, userID string, profile *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if profile == nil {
		return store.ProfileError("create", errors.New("profile cannot be nil"))
	}

	query := `
		INSERT INTO profiles (user_id, email, username, full_name, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email,
			username = EXCLUDED.username,
			full_name = EXCLUDED.full_name,
			created_at = EXCLUDED.created_at
	`

	if _, err := s.db.Exec(ctx, query, userID, profile.Email, profile.Username, profile.FullName); err != nil {
		log.Error("failed to insert profile",
			slog.String("user_id", userID),
			slog.String("error", redact.Error(err)))
		return store.ProfileError("create", MapError(err))
	}

	log.Debug("profile row written", slog.String("user_id", userID))
	return nil
}

// Get implements store.ProfileStore.Get.
func (s *PostgresProfileStore) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT email, username, full_name, created_at
		FROM profiles
		WHERE user_id = $1
	`

	var profile domain.Profile
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&profile.Email,
		&profile.Username,
		&profile.FullName,
		&profile.CreatedAt,
	)
	if err != nil {
		return nil, store.ProfileError("get", MapError(err))
	}
	return &profile, nil
}

// Update implements store.ProfileStore.Update.
func (s *PostgresProfileStore) Update(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil
	}

	query, args := buildUpdateQuery(userID, fields)

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return store.ProfileError("update", MapError(err))
	}
	if err := CheckRowsAffected(tag); err != nil {
		return store.ProfileError("update", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("profile row updated",
		slog.String("user_id", userID),
		slog.Int("fields", len(fields)))
	return nil
}

// Delete implements store.ProfileStore.Delete.
func (s *PostgresProfileStore) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM profiles WHERE user_id = $1`

	if _, err := s.db.Exec(ctx, query, userID); err != nil {
		return store.ProfileError("delete", MapError(err))
	}
	return nil
}

// updatableColumns whitelists the columns a ProfileUpdate may touch.
var updatableColumns = map[string]bool{
	domain.FieldUsername: true,
	domain.FieldFullName: true,
}

func buildUpdateQuery(userID string, fields []domain.ProfileField) (string, []any) {
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		if !updatableColumns[f.Name] {
			continue
		}
		args = append(args, f.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", f.Name, len(args)))
	}
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE profiles SET %s WHERE user_id = $%d", strings.Join(sets, ", "), len(args))
	return query, args
}
