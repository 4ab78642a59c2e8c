// Package sqlstore implements store.Store over database/sql. Queries are
// written once with ? placeholders; a Dialect rebinds them and translates
// driver errors into store errors.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect adapts the shared queries to one database.
type Dialect interface {
	// Rebind rewrites ? placeholders into the driver's syntax.
	Rebind(query string) string

	// MapError turns driver errors into store errors (ConflictError,
	// ErrReferenceNotFound). Unknown errors pass through; nil stays nil.
	MapError(err error) error
}

// Migrator applies pending schema migrations to db.
type Migrator func(db *sql.DB) error

type Store struct {
	db      *sql.DB
	dialect Dialect
	migrate Migrator
	repos
}

var _ store.Store = (*Store)(nil)

// New wraps an open database. The Store takes ownership of db.
func New(db *sql.DB, dialect Dialect, migrate Migrator) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		migrate: migrate,
		repos:   repos{q: querier{db: db, d: dialect}},
	}
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db)
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Safe after commit; also covers a panicking fn.
	defer func() { _ = tx.Rollback() }()

	if err := fn(repos{q: querier{db: tx, d: s.dialect}}); err != nil {
		return err
	}
	return s.dialect.MapError(tx.Commit())
}

// repos implements store.Repos over whatever DBTX the querier holds.
type repos struct {
	q querier
}

func (r repos) Users() store.Users                 { return usersRepo(r) }
func (r repos) Tenants() store.Tenants             { return tenantsRepo(r) }
func (r repos) Roles() store.Roles                 { return rolesRepo(r) }
func (r repos) Permissions() store.Permissions     { return permissionsRepo(r) }
func (r repos) RefreshTokens() store.RefreshTokens { return refreshTokensRepo(r) }

type querier struct {
	db DBTX
	d  Dialect
}

func (q querier) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := q.db.ExecContext(ctx, q.d.Rebind(query), args...)
	return res, q.d.MapError(err)
}

// execOne runs a write and reports ErrNotFound if no row matched.
func (q querier) execOne(ctx context.Context, query string, args ...any) error {
	res, err := q.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (q querier) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.d.Rebind(query), args...)
}

func (q querier) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.db.QueryContext(ctx, q.d.Rebind(query), args...)
	return rows, q.d.MapError(err)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (q querier) mapScan(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return q.d.MapError(err)
}

// collect drains rows through scan.
func collect[T any](q querier, rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, q.d.MapError(err)
		}
		out = append(out, v)
	}
	return out, q.d.MapError(rows.Err())
}

// Dollar rewrites ? placeholders as $1, $2, ... Queries in this package
// never contain a literal question mark.
func Dollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// datePtr normalises a stored date to UTC midnight.
func datePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	y, m, d := nt.Time.Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	return fmt.Errorf("sqlstore: %s: %w", op, err)
}
