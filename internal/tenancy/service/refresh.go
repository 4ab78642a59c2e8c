package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
)

// RefreshTokens issues, verifies and revokes long-lived refresh tokens.
// Every issued token has a row in the store, keyed by its fingerprint, and
// that row is the only authority on whether the token is still good.
type RefreshTokens struct {
	codec *jwtx.HS256
	store store.Store
}

// NewRefreshTokens builds the manager. A nil clock means time.Now.
func NewRefreshTokens(secret []byte, st store.Store, clock jwtx.Clock) (*RefreshTokens, error) {
	codec, err := jwtx.NewHS256(secret, jwtx.TypeRefresh, clock)
	if err != nil {
		return nil, fmt.Errorf("refresh tokens: %w", err)
	}
	return &RefreshTokens{codec: codec, store: st}, nil
}

// Issue signs a refresh token for subject and records it. If the record
// can't be written no token is returned.
func (m *RefreshTokens) Issue(ctx context.Context, subject string) (string, error) {
	var err error
	for range issueAttempts {
		var token string
		token, err = m.issueOnce(ctx, subject)
		// Two issues in the same second can only collide on the
		// fingerprint if they also drew the same jti; a fresh jti settles it.
		if store.IsConflict(err, store.ConstraintRefreshTokenHash) {
			continue
		}
		return token, err
	}
	return "", err
}

const issueAttempts = 2

func (m *RefreshTokens) issueOnce(ctx context.Context, subject string) (string, error) {
	now := m.codec.Now()
	jti := idx.NewAt(now)
	claims := jwtx.NewRefreshClaims(subject, jti.String(), now)

	token, err := m.codec.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}

	row := domain.RefreshToken{
		ID:        jti.String(),
		UserID:    subject,
		TokenHash: cryptox.FingerprintToken(token),
		IssuedAt:  claims.Issued(),
		ExpiresAt: claims.Expiry(),
	}
	if err := m.store.RefreshTokens().CreateRefreshToken(ctx, row); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}

	return token, nil
}

// Verify returns the subject of a live refresh token. The lookup is by the
// exact presented string; nothing is accepted on signature alone.
func (m *RefreshTokens) Verify(ctx context.Context, token string) (string, error) {
	row, err := m.store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrRefreshNotFound
		}
		return "", fmt.Errorf("load refresh token: %w", err)
	}

	if row.Revoked {
		return "", ErrRefreshRevoked
	}
	if row.ExpiredAt(m.codec.Now()) {
		return "", ErrRefreshExpired
	}
	return row.UserID, nil
}

// Revoke marks the token revoked. Unknown and already revoked tokens are
// not an error; only a store failure is.
func (m *RefreshTokens) Revoke(ctx context.Context, token string) error {
	err := m.store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(token), m.codec.Now())
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
