// Package sqlite is the SQLite (modernc, cgo-free) store driver.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/sqlstore"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database, pinned to one connection since every new
// connection would otherwise see an empty database.
func Open(path string) (*sqlstore.Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: database path is required")
	}

	memory := path == ":memory:"

	db, err := sql.Open("sqlite", dsn(path, memory))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return sqlstore.New(db, Dialect{}, applyMigrations), nil
}

// dsn enables foreign keys on every pooled connection and stores times in a
// lexically sortable format.
func dsn(path string, memory bool) string {
	const common = "_pragma=foreign_keys(1)&_time_format=sqlite"
	if memory {
		return "file::memory:?" + common
	}
	path = strings.TrimPrefix(path, "file:")
	path, _, _ = strings.Cut(path, "?")
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&%s", path, common)
}
