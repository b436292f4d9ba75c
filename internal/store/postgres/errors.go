package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gosuda/leasedesk/internal/domain"
)

// Postgres SQLSTATE codes the store translates.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// mapError translates constraint violations into domain sentinels and
// passes anything else through.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrConflict)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrInvalidReference)
	case codeCheckViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrValidation)
	default:
		return err
	}
}

// mapDeleteError is mapError for deletes: a foreign key violation there
// means the row is still referenced.
func mapDeleteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return fmt.Errorf("%s: still referenced: %w", pgErr.ConstraintName, domain.ErrConflict)
	}
	return mapError(err)
}
