//go:build integration

// Package testdb provides utilities for tests that run against a real
// PostgreSQL profile store.
//
// Each test runs in its own transaction, which is rolled back when the test
// completes, so tests can share tables and run in parallel without cleanup.
//
//	func TestProfileStore(t *testing.T) {
//	    t.Parallel()
//
//	    pool := testdb.Open(t)
//	    testdb.WithTx(t, pool, func(t *testing.T, tx pgx.Tx) {
//	        s := postgres.NewPostgresProfileStore(tx, nil)
//	        // ...
//	    })
//	}
//
// Tests are skipped when no database URL is set. The URL is read from
// ACCOUNT_TEST_DB_URL, then ACCOUNT_STORE_DATABASE_URL, then DATABASE_URL.
package testdb
