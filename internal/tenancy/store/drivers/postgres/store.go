// Package postgres is the PostgreSQL store driver, built on pgx through
// database/sql so it shares every query with the sqlite driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/sqlstore"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Pool limits applied to every connection pool.
const (
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// Open connects to dsn (a postgres:// URL or key=value string) and checks
// the connection.
func Open(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return FromDB(db), nil
}

// FromDB wraps an already open database.
func FromDB(db *sql.DB) *sqlstore.Store {
	return sqlstore.New(db, Dialect{}, applyMigrations)
}
