package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256 signs and verifies one class of token (access or refresh) with a
// single shared secret. It holds no mutable state and is safe for concurrent
// use.
type HS256 struct {
	secret []byte
	typ    string
	now    Clock
}

// NewHS256 returns a codec for tokens of type typ. An empty secret is a
// configuration defect and is rejected here rather than on first use.
func NewHS256(secret []byte, typ string, now Clock) (*HS256, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if now == nil {
		now = time.Now
	}

	// Own a copy so the caller can't mutate the key after construction.
	key := make([]byte, len(secret))
	copy(key, secret)

	return &HS256{secret: key, typ: typ, now: now}, nil
}

// Now returns the codec's current time.
func (h *HS256) Now() time.Time { return h.now() }

// Sign turns the claims into a compact JWS.
func (h *HS256) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["typ"] = h.typ
	return t.SignedString(h.secret)
}

// Verify parses tokenStr, checks the signature and type header, then checks
// that now < exp. Signature problems win over expiry: a tampered token that
// has also expired reports ErrInvalidSig.
func (h *HS256) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(h.now),
		jwt.WithExpirationRequired(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if typ, _ := t.Header["typ"].(string); typ != h.typ {
			return nil, fmt.Errorf("jwtx: unexpected token type %q", typ)
		}
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing sub", ErrInvalidClaim)
	}

	return claims, nil
}

// classify folds the jwt library's error tree into our sentinels.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
