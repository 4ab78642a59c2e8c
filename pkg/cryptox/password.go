package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported algorithms for newly created password hashes.
const (
	AlgBcrypt   = "bcrypt"
	AlgArgon2id = "argon2id"
)

// Argon2id parameters used for new hashes. Verification always reads the
// parameters back out of the stored PHC string.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

// bcryptCost is a variable so tests can drop it to bcrypt.MinCost.
var bcryptCost = bcrypt.DefaultCost

// ErrHashFormat is returned when a stored hash is not in a recognised
// format, or is recognised but cannot be parsed.
var ErrHashFormat = errors.New("cryptox: unrecognised password hash format")

// ErrUnknownAlgorithm is returned by HashPassword for an unsupported alg.
var ErrUnknownAlgorithm = errors.New("cryptox: unknown password hash algorithm")

// ValidAlgorithm reports whether alg can be passed to HashPassword.
func ValidAlgorithm(alg string) bool {
	return alg == AlgBcrypt || alg == AlgArgon2id
}

// HashPassword hashes plain with the named algorithm.
func HashPassword(plain, alg string) (string, error) {
	switch alg {
	case AlgBcrypt:
		b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
		if err != nil {
			return "", fmt.Errorf("cryptox: bcrypt: %w", err)
		}
		return string(b), nil
	case AlgArgon2id:
		return hashArgon2id(plain)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

// VerifyPassword checks plain against a stored bcrypt or argon2id hash.
// A mismatch is (false, nil); ErrHashFormat means the stored value itself
// is broken.
func VerifyPassword(plain, stored string) (bool, error) {
	switch {
	case isBcrypt(stored):
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword),
			errors.Is(err, bcrypt.ErrPasswordTooLong):
			return false, nil
		default:
			return false, fmt.Errorf("%w: %v", ErrHashFormat, err)
		}
	case strings.HasPrefix(stored, "$argon2id$"):
		return verifyArgon2id(plain, stored)
	default:
		return false, ErrHashFormat
	}
}

// dummyHash is a bcrypt hash at the current cost of a password nobody has.
var dummyHash = sync.OnceValue(func() string {
	h, err := HashPassword("no-such-user", AlgBcrypt)
	if err != nil {
		return ""
	}
	return h
})

// DummyVerify does the work of a failed VerifyPassword against a bcrypt
// hash. Callers with no stored hash to check run it so the miss costs the
// same as a wrong password.
func DummyVerify(plain string) {
	_, _ = VerifyPassword(plain, dummyHash())
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}

// hashArgon2id generates a PHC-format Argon2id hash string including salt
// and parameters.
func hashArgon2id(plain string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(plain), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// verifyArgon2id parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash and compares in
// constant time.
func verifyArgon2id(plain, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: expected 6 argon2id parts", ErrHashFormat)
	}
	if parts[2] != "v=19" {
		return false, fmt.Errorf("%w: unsupported argon2 version %q", ErrHashFormat, parts[2])
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return false, fmt.Errorf("%w: parameters: %v", ErrHashFormat, err)
	}
	if mem == 0 || iters == 0 || par == 0 {
		return false, fmt.Errorf("%w: zero parameter", ErrHashFormat)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrHashFormat, err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, fmt.Errorf("%w: hash", ErrHashFormat)
	}

	computed := argon2.IDKey(
		[]byte(plain),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - bounded by the decoded hash length
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
