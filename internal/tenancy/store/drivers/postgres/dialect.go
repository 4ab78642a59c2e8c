package postgres

import (
	"errors"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/sqlstore"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes we translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Dialect rebinds to $n placeholders and maps pg errors.
type Dialect struct{}

func (Dialect) Rebind(query string) string { return sqlstore.Dollar(query) }

func (Dialect) MapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return &store.ConflictError{Constraint: pgErr.ConstraintName, Err: err}
	case codeForeignKeyViolation:
		return errors.Join(store.ErrReferenceNotFound, err)
	default:
		return err
	}
}
