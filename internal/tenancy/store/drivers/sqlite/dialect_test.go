package sqlite

import (
	"errors"
	"testing"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/stretchr/testify/require"
)

func TestConstraintName(t *testing.T) {
	msg := "constraint failed: UNIQUE constraint failed: users.email (2067)"
	require.Equal(t, "users_email_key", constraintName(msg, "key"))
	require.Equal(t, "users_pkey", constraintName(msg, "pkey"))

	multi := "UNIQUE constraint failed: refresh_tokens.token_hash, refresh_tokens.user_id"
	require.Equal(t, "refresh_tokens_token_hash_key", constraintName(multi, "key"))

	require.Equal(t, "unknown", constraintName("disk I/O error", "key"))
}

func TestMapErrorPassesThrough(t *testing.T) {
	d := Dialect{}
	require.NoError(t, d.MapError(nil))

	plain := errors.New("boom")
	require.Same(t, plain, d.MapError(plain))

	var ce *store.ConflictError
	require.False(t, errors.As(d.MapError(plain), &ce))
}

func TestDSN(t *testing.T) {
	require.Equal(t, "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite", dsn(":memory:", true))
	require.Equal(t,
		"file:data/t.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_time_format=sqlite",
		dsn("file:data/t.db?mode=rwc", false),
	)
}
