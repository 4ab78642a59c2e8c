package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/storetest"
	"github.com/stretchr/testify/require"
)

func TestInMemoryConformance(t *testing.T) {
	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	storetest.Run(t, st)
}

func TestFileConformance(t *testing.T) {
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "tenancy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	storetest.Run(t, st)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenancy.db")

	st, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Users().CreateUser(context.Background(), storetest.NewUser("keep@example.com")))
	require.NoError(t, st.Close())

	st, err = sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	_, err = st.Users().GetUserByEmail(context.Background(), "keep@example.com")
	require.NoError(t, err)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	require.Error(t, err)
}
