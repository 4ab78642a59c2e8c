package sqlite

import (
	"errors"
	"regexp"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Dialect keeps ? placeholders and maps SQLite constraint errors.
type Dialect struct{}

func (Dialect) Rebind(query string) string { return query }

// uniqueColumn pulls the first table.column out of
// "UNIQUE constraint failed: users.email".
var uniqueColumn = regexp.MustCompile(`UNIQUE constraint failed: (\w+)\.(\w+)`)

func (Dialect) MapError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return &store.ConflictError{Constraint: constraintName(sqliteErr.Error(), "key"), Err: err}
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return &store.ConflictError{Constraint: constraintName(sqliteErr.Error(), "pkey"), Err: err}
	case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return errors.Join(store.ErrReferenceNotFound, err)
	default:
		return err
	}
}

// constraintName rebuilds the postgres-style name so callers can match one
// constant across drivers. Primary keys are <table>_pkey.
func constraintName(msg, suffix string) string {
	m := uniqueColumn.FindStringSubmatch(msg)
	if m == nil {
		return "unknown"
	}
	if suffix == "pkey" {
		return m[1] + "_pkey"
	}
	return m[1] + "_" + m[2] + "_" + suffix
}
