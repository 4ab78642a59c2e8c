package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes are fixed by the protocol, they are not runtime
// configuration.
const (
	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL = time.Hour

	// RefreshTokenTTL is the lifetime of a refresh token.
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// Token type header values. Each signer stamps its own and each verifier
// rejects the other, on top of the two secrets being distinct.
const (
	TypeAccess  = "at+jwt"
	TypeRefresh = "rt+jwt"
)

// Claims is the payload carried by both token classes. Access tokens only
// populate sub, iat and exp so that two tokens issued for the same subject at
// the same second are byte-identical. Refresh tokens also carry a jti so that
// concurrent logins never collide on the stored token value.
type Claims struct {
	jwt.RegisteredClaims
}

// NewAccessClaims builds the claims for an access token issued at now.
func NewAccessClaims(subject string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}
}

// NewRefreshClaims builds the claims for a refresh token issued at now.
func NewRefreshClaims(subject, jti string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
		},
	}
}

// Expiry returns exp as a time.Time, or the zero time when absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Issued returns iat as a time.Time, or the zero time when absent.
func (c Claims) Issued() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}
