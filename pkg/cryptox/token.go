package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
)

// FingerprintToken hashes a bearer token for storage. Lookups hash the
// presented token the same way, so only the digest ever reaches the store.
// Output is unpadded base64url SHA-256.
func FingerprintToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(digest[:])
}
