//go:build integration

package testdb

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phrazzld/account-api/internal/platform/postgres"
)

// TestTimeout bounds connecting and migrating the test database.
const TestTimeout = 30 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// Open connects to the test database, applies migrations once per test
// binary, and closes the pool when t completes. It skips t when no database
// URL is set.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("no test database URL set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, dbURL)
	if err != nil {
		if isCIEnvironment() {
			t.Logf("CI debug: database URL (masked): %s", maskDatabaseURL(dbURL))
		}
		t.Fatalf("Database connection failed: %v", err)
	}
	t.Cleanup(pool.Close)

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(ctx, pool, slog.Default())
	})
	if migrateErr != nil {
		t.Fatalf("Migration failed: %v", migrateErr)
	}

	return pool
}
