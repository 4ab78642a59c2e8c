package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokensRejectsEmptySecret(t *testing.T) {
	_, err := service.NewAccessTokens(nil, nil)
	require.ErrorIs(t, err, jwtx.ErrEmptySecret)
}

func TestAccessTokenLifetime(t *testing.T) {
	clk := newClock()
	at, err := service.NewAccessTokens(accessSecret, clk.Now)
	require.NoError(t, err)

	token, err := at.Issue("user-1")
	require.NoError(t, err)

	claims, err := at.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, epoch.Add(time.Hour).Unix(), claims.Expiry().Unix())

	clk.Advance(3599 * time.Second)
	_, err = at.Verify(token)
	require.NoError(t, err)

	clk.Advance(time.Second)
	_, err = at.Verify(token)
	require.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestAccessTokenIsDeterministicWithinASecond(t *testing.T) {
	clk := newClock()
	at, err := service.NewAccessTokens(accessSecret, clk.Now)
	require.NoError(t, err)

	a, err := at.Issue("user-1")
	require.NoError(t, err)
	clk.Advance(500 * time.Millisecond)
	b, err := at.Issue("user-1")
	require.NoError(t, err)
	require.Equal(t, a, b)

	clk.Advance(time.Second)
	c, err := at.Issue("user-1")
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestAccessTokenCrossSecret(t *testing.T) {
	clk := newClock()
	mine, err := service.NewAccessTokens(accessSecret, clk.Now)
	require.NoError(t, err)
	theirs, err := service.NewAccessTokens(refreshSecret, clk.Now)
	require.NoError(t, err)

	a, err := mine.Issue("user-1")
	require.NoError(t, err)
	b, err := theirs.Issue("user-1")
	require.NoError(t, err)

	_, err = theirs.Verify(a)
	require.ErrorIs(t, err, service.ErrTokenSignatureInvalid)
	_, err = mine.Verify(b)
	require.ErrorIs(t, err, service.ErrTokenSignatureInvalid)
}

func TestAccessTokenTampered(t *testing.T) {
	clk := newClock()
	at, err := service.NewAccessTokens(accessSecret, clk.Now)
	require.NoError(t, err)

	token, err := at.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	_, err = at.Verify(parts[0] + "." + parts[1] + "." + string(sig))
	require.ErrorIs(t, err, service.ErrTokenSignatureInvalid)

	_, err = at.Verify("not-a-jwt")
	require.ErrorIs(t, err, service.ErrTokenMalformed)
}
