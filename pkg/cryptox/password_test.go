package cryptox

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	bcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func TestHashPassword_RoundTrip(t *testing.T) {
	passwords := []string{
		"password123",
		"P@ssw0rd!#$%^&*()",
		"",
		"пароль🔒密码",
		"   spaces   ",
	}

	for _, alg := range []string{AlgBcrypt, AlgArgon2id} {
		for _, pw := range passwords {
			t.Run(alg+"/"+pw, func(t *testing.T) {
				hash, err := HashPassword(pw, alg)
				require.NoError(t, err)

				ok, err := VerifyPassword(pw, hash)
				require.NoError(t, err)
				require.True(t, ok)

				ok, err = VerifyPassword(pw+"x", hash)
				require.NoError(t, err)
				require.False(t, ok)
			})
		}
	}
}

func TestHashPassword_Format(t *testing.T) {
	h, err := HashPassword("secret", AlgBcrypt)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h, "$2a$"), h)

	h, err = HashPassword("secret", AlgArgon2id)
	require.NoError(t, err)
	parts := strings.Split(h, "$")
	require.Len(t, parts, 6)
	require.Equal(t, "argon2id", parts[1])
	require.Equal(t, "v=19", parts[2])
	require.Equal(t, "m=19456,t=2,p=1", parts[3])
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	for _, alg := range []string{AlgBcrypt, AlgArgon2id} {
		a, err := HashPassword("same", alg)
		require.NoError(t, err)
		b, err := HashPassword("same", alg)
		require.NoError(t, err)
		require.NotEqual(t, a, b, alg)
	}
}

func TestHashPassword_UnknownAlgorithm(t *testing.T) {
	_, err := HashPassword("secret", "md5")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
	require.False(t, ValidAlgorithm("md5"))
	require.True(t, ValidAlgorithm(AlgBcrypt))
	require.True(t, ValidAlgorithm(AlgArgon2id))
}

func TestVerifyPassword_KnownBcryptVectors(t *testing.T) {
	// $2y$ and $2b$ prefixes produced by other bcrypt implementations.
	h, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	for _, prefix := range []string{"$2b$", "$2y$"} {
		stored := prefix + string(h[4:])
		ok, err := VerifyPassword("hunter2", stored)
		require.NoError(t, err, prefix)
		require.True(t, ok, prefix)
	}
}

func TestVerifyPassword_HashFormatErrors(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"plaintext", "hunter2"},
		{"unknown scheme", "$1$abc$def"},
		{"truncated bcrypt", "$2a$10$short"},
		{"argon2id missing parts", "$argon2id$v=19$m=65536,t=3,p=2$salt"},
		{"argon2id wrong version", "$argon2id$v=16$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{"argon2id bad params", "$argon2id$v=19$m=abc,t=3,p=2$c2FsdA$aGFzaA"},
		{"argon2id zero params", "$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA"},
		{"argon2id bad salt", "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA"},
		{"argon2id bad hash", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifyPassword("anything", tt.stored)
			require.ErrorIs(t, err, ErrHashFormat)
			require.False(t, ok)
		})
	}
}

func TestDummyVerify(t *testing.T) {
	h := dummyHash()
	require.True(t, isBcrypt(h))
	require.Equal(t, h, dummyHash())

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	require.Equal(t, bcryptCost, cost)

	ok, err := VerifyPassword("no-such-user-guess", h)
	require.NoError(t, err)
	require.False(t, ok)

	require.NotPanics(t, func() { DummyVerify("anything") })
}
