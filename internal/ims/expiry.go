package ims

import (
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// expiryAlgorithms lists the header algorithms accepted when decoding a
// token payload. Decoding never verifies the signature; the list only
// gates obviously malformed headers.
var expiryAlgorithms = []jose.SignatureAlgorithm{jose.RS256, jose.PS256, jose.ES256, jose.HS256}

// ExpiryOf decodes the payload segment of a JWT-shaped string without
// signature verification and returns its exp claim. Returns an error when
// the string is not three dot-separated base64url segments, the payload is
// not valid JSON, or no exp claim is present.
func ExpiryOf(token string) (time.Time, error) {
	parsed, err := jwt.ParseSigned(token, expiryAlgorithms)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode token: %w", err)
	}

	var claims jwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return time.Time{}, fmt.Errorf("decode token claims: %w", err)
	}
	if claims.Expiry == nil {
		return time.Time{}, fmt.Errorf("token has no exp claim")
	}
	return claims.Expiry.Time(), nil
}

// IsExpired reports whether the token's exp claim is in the past.
// Malformed tokens are reported as expired: a token that cannot be decoded
// must never be treated as usable. Expiry here is advisory only; a 401
// from the remote service is authoritative.
func IsExpired(token string) bool {
	exp, err := ExpiryOf(token)
	if err != nil {
		return true
	}
	return time.Now().After(exp)
}
