package ims_test

import (
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"

	"github.com/shin2080/asset-selector-http-api/internal/ims"
)

func signedTokenWithExpiry(t *testing.T, exp time.Time) string {
	t.Helper()
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: testRSAKey(t)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(t, err)

	raw, err := jwt.Signed(signer).Claims(jwt.Claims{
		Issuer: "test",
		Expiry: jwt.NewNumericDate(exp),
	}).Serialize()
	require.NoError(t, err)
	return raw
}

func TestExpiryOf(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedTokenWithExpiry(t, exp)

	got, err := ims.ExpiryOf(token)
	require.NoError(t, err)
	require.True(t, got.Equal(exp))
}

func TestIsExpired(t *testing.T) {
	require.False(t, ims.IsExpired(signedTokenWithExpiry(t, time.Now().Add(time.Hour))))
	require.True(t, ims.IsExpired(signedTokenWithExpiry(t, time.Now().Add(-time.Hour))))
}

func TestIsExpiredFailSafe(t *testing.T) {
	// Anything that cannot be decoded must read as expired.
	for _, token := range []string{
		"",
		"not-a-jwt",
		"one.two",
		"a.b.c",
		"!!!.###.$$$",
	} {
		require.True(t, ims.IsExpired(token), "token %q", token)

		_, err := ims.ExpiryOf(token)
		require.Error(t, err, "token %q", token)
	}
}

func TestExpiryOfMissingClaim(t *testing.T) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: testRSAKey(t)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(t, err)
	raw, err := jwt.Signed(signer).Claims(jwt.Claims{Issuer: "test"}).Serialize()
	require.NoError(t, err)

	_, err = ims.ExpiryOf(raw)
	require.Error(t, err)
	require.True(t, ims.IsExpired(raw))
}
