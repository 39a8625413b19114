package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/account-api/internal/domain"
)

// PostgreSQL error codes
const (
	// queryCanceledCode is raised when statement_timeout or a cancel request
	// stops a query.
	queryCanceledCode = "57014"

	// cannotConnectNowCode is raised while the server is starting up or
	// shutting down.
	cannotConnectNowCode = "57P03"
)

// MapError maps a database error to the matching domain error while keeping
// the original error in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", domain.ErrProfileNotFound, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case queryCanceledCode, cannotConnectNowCode:
			return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
		}
	}

	return err
}

// CheckRowsAffected returns domain.ErrProfileNotFound when a statement
// touched no rows.
func CheckRowsAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
