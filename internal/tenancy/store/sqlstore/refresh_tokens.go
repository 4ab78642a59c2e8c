package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

type refreshTokensRepo repos

func (r refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, issued_at, expires_at, revoked, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.IssuedAt.UTC(), t.ExpiresAt.UTC(), t.Revoked, nullTime(t.RevokedAt),
	)
	return wrap("create refresh token", err)
}

func (r refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var (
		t         domain.RefreshToken
		revokedAt sql.NullTime
	)
	err := r.q.queryRow(ctx, `
		SELECT id, user_id, token_hash, issued_at, expires_at, revoked, revoked_at
		FROM refresh_tokens WHERE token_hash = ?`, hash,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.IssuedAt, &t.ExpiresAt, &t.Revoked, &revokedAt)
	if err != nil {
		return domain.RefreshToken{}, wrap("get refresh token", r.q.mapScan(err))
	}

	t.IssuedAt = t.IssuedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.RevokedAt = timePtr(revokedAt)
	return t, nil
}

// RevokeRefreshToken only touches a row that is still live, so the first
// revocation time sticks and a repeat is a no-op.
func (r refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string, at time.Time) error {
	_, err := r.q.exec(ctx,
		`UPDATE refresh_tokens SET revoked = ?, revoked_at = ? WHERE token_hash = ? AND revoked = ?`,
		true, at.UTC(), hash, false,
	)
	return wrap("revoke refresh token", err)
}

func (r refreshTokensRepo) RevokeUserRefreshTokens(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := r.q.exec(ctx,
		`UPDATE refresh_tokens SET revoked = ?, revoked_at = ? WHERE user_id = ? AND revoked = ?`,
		true, at.UTC(), userID, false,
	)
	if err != nil {
		return 0, wrap("revoke user refresh tokens", err)
	}
	n, err := res.RowsAffected()
	return n, wrap("revoke user refresh tokens", err)
}

// CountRefreshTokens reads only; rows are kept forever.
func (r refreshTokensRepo) CountRefreshTokens(ctx context.Context, now time.Time) (domain.RefreshTokenCounts, error) {
	var total, revoked, expired int64
	err := r.q.queryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN revoked = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN revoked = ? AND expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM refresh_tokens`,
		true, false, now.UTC(),
	).Scan(&total, &revoked, &expired)
	if err != nil {
		return domain.RefreshTokenCounts{}, wrap("count refresh tokens", r.q.d.MapError(err))
	}

	return domain.RefreshTokenCounts{
		Live:    total - revoked - expired,
		Revoked: revoked,
		Expired: expired,
	}, nil
}
