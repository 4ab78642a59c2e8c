package domain

import "time"

// TokenPair is what a successful login returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken is the stored record of an issued refresh token. The token
// itself is never stored, only its fingerprint.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the token string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt *time.Time
}

// ExpiredAt reports whether the token is past its expiry at now. A token
// is valid strictly before ExpiresAt.
func (t RefreshToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// RefreshTokenCounts breaks the stored refresh tokens down by state. A
// revoked token counts as revoked whether or not it has also expired.
type RefreshTokenCounts struct {
	Live    int64
	Revoked int64
	Expired int64
}

func (c RefreshTokenCounts) Total() int64 { return c.Live + c.Revoked + c.Expired }
