package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/postgres"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/sqlstore"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*sqlstore.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return postgres.FromDB(db), mock
}

func TestMapError(t *testing.T) {
	d := postgres.Dialect{}

	require.NoError(t, d.MapError(nil))

	plain := errors.New("boom")
	require.Same(t, plain, d.MapError(plain))

	unique := &pgconn.PgError{Code: "23505", ConstraintName: store.ConstraintRoleName}
	require.True(t, store.IsConflict(d.MapError(unique), store.ConstraintRoleName))
	require.ErrorIs(t, d.MapError(unique), unique)

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "users_tenant_id_fkey"}
	require.ErrorIs(t, d.MapError(fk), store.ErrReferenceNotFound)

	other := &pgconn.PgError{Code: "40001"}
	require.Same(t, other, d.MapError(other))
}

func TestRebind(t *testing.T) {
	require.Equal(t,
		"UPDATE t SET a = $1, b = $2 WHERE c = $3",
		postgres.Dialect{}.Rebind("UPDATE t SET a = ?, b = ? WHERE c = ?"),
	)
}

func TestRevokeRefreshTokenQuery(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`^UPDATE refresh_tokens SET revoked = \$1, revoked_at = \$2 WHERE token_hash = \$3 AND revoked = \$4$`).
		WithArgs(true, sqlmock.AnyArg(), "hash", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.RefreshTokens().RevokeRefreshToken(context.Background(), "hash", time.Now()))
}

func TestCountRefreshTokensQuery(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^\s*SELECT\s+COUNT\(\*\),.*FROM refresh_tokens$`).
		WithArgs(true, false, now).
		WillReturnRows(sqlmock.NewRows([]string{"count", "revoked", "expired"}).AddRow(10, 4, 3))

	counts, err := st.RefreshTokens().CountRefreshTokens(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, domain.RefreshTokenCounts{Live: 3, Revoked: 4, Expired: 3}, counts)

	mock.ExpectQuery(`FROM refresh_tokens`).WillReturnError(errors.New("connection reset"))
	_, err = st.RefreshTokens().CountRefreshTokens(context.Background(), now)
	require.ErrorContains(t, err, "sqlstore: count refresh tokens")
}

func TestDeleteUserIsSoft(t *testing.T) {
	st, mock := newMockStore(t)
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`^UPDATE users SET deleted_at = \$1, is_active = \$2 WHERE id = \$3 AND deleted_at IS NULL$`).
		WithArgs(at, false, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^UPDATE refresh_tokens SET revoked = \$1, revoked_at = \$2 WHERE user_id = \$3 AND revoked = \$4$`).
		WithArgs(true, at, "u1", false).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, st.Users().DeleteUser(context.Background(), "u1", at))
	n, err := st.RefreshTokens().RevokeUserRefreshTokens(context.Background(), "u1", at)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestCreateUserConflict(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`(?s)^\s*INSERT INTO users .*VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11, \$12, \$13, \$14\)$`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: store.ConstraintUserEmail})

	err := st.Users().CreateUser(context.Background(), domain.User{
		ID: "u1", Email: "taken@example.com", PasswordHash: "h", CreatedAt: time.Now(), IsActive: true,
	})
	require.True(t, store.IsConflict(err, store.ConstraintUserEmail))
}

func TestCreateUserUnknownTenant(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := st.Users().CreateUser(context.Background(), domain.User{ID: "u1", TenantID: "nope", CreatedAt: time.Now()})
	require.ErrorIs(t, err, store.ErrReferenceNotFound)
}

func TestGetRoleNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`^SELECT id, name, description, created_at FROM roles WHERE id = \$1$`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}))

	_, err := st.Roles().GetRoleByID(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListRolesScansNullDescription(t *testing.T) {
	st, mock := newMockStore(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`^SELECT id, name, description, created_at FROM roles ORDER BY name$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
			AddRow("r1", "admin", nil, created).
			AddRow("r2", "viewer", "read only", created))

	roles, err := st.Roles().ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Empty(t, roles[0].Description)
	require.Equal(t, "read only", roles[1].Description)
	require.Equal(t, created, roles[1].CreatedAt)
}

func TestUpdateRoleNoRows(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`^UPDATE roles SET name = \$1, description = \$2 WHERE id = \$3$`).
		WithArgs("admin", nil, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.Roles().UpdateRole(context.Background(), domain.Role{ID: "missing", Name: "admin"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st, mock := newMockStore(t)
	failure := errors.New("stop")

	mock.ExpectBegin()
	mock.ExpectExec(`^DELETE FROM roles WHERE id = \$1$`).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := st.WithTx(context.Background(), func(tx store.Tx) error {
		if err := tx.Roles().DeleteRole(context.Background(), "r1"); err != nil {
			return err
		}
		return failure
	})
	require.ErrorIs(t, err, failure)
}

func TestWithTxCommits(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`^DELETE FROM roles WHERE id = \$1$`).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.Roles().DeleteRole(context.Background(), "r1")
	})
	require.NoError(t, err)
}

func TestPingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectPing().WillReturnError(sql.ErrConnDone)
	require.ErrorIs(t, postgres.FromDB(db).Ping(context.Background()), sql.ErrConnDone)
}
