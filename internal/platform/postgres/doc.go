// Package postgres provides the PostgreSQL implementation of
// store.ProfileStore, selected with store.backend=postgres. It owns the
// connection pool, the embedded schema migrations and the mapping between
// profile rows and domain profiles.
package postgres
