package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
)

// AccessTokens issues and verifies short-lived access tokens. It is pure:
// no store, no I/O, and safe for concurrent use.
type AccessTokens struct {
	codec *jwtx.HS256
}

var _ jwtx.Verifier = (*AccessTokens)(nil)

// NewAccessTokens builds the codec. A nil clock means time.Now.
func NewAccessTokens(secret []byte, clock jwtx.Clock) (*AccessTokens, error) {
	codec, err := jwtx.NewHS256(secret, jwtx.TypeAccess, clock)
	if err != nil {
		return nil, fmt.Errorf("access tokens: %w", err)
	}
	return &AccessTokens{codec: codec}, nil
}

// Issue signs an access token for subject valid for one hour from now.
// Two calls within the same second return the same string.
func (a *AccessTokens) Issue(subject string) (string, error) {
	token, err := a.codec.Sign(jwtx.NewAccessClaims(subject, a.codec.Now()))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// Verify checks the token and returns its claims. Errors are one of
// ErrTokenMalformed, ErrTokenSignatureInvalid or ErrTokenExpired.
func (a *AccessTokens) Verify(token string) (jwtx.Claims, error) {
	claims, err := a.codec.Verify(token)
	if err == nil {
		return claims, nil
	}

	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return jwtx.Claims{}, ErrTokenExpired
	case errors.Is(err, jwtx.ErrInvalidSig):
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrTokenSignatureInvalid, err)
	default:
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}
