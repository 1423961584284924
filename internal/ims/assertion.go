// Package ims builds signed service-account assertions and exchanges them
// for short-lived bearer access tokens. The private key stays on-device;
// only the signed assertion is sent out, and only to the trusted local
// relay that forwards it to the real authorization endpoint.
package ims

import (
	"fmt"
	"strings"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// assertionTTL is the lifetime claimed by a freshly built assertion.
// Computed from the local clock; skew against the authorization server is
// a known risk carried over from the original integration contract.
const assertionTTL = 24 * time.Hour

// BuildAssertion constructs and signs the JWT assertion for the given
// credentials: a fixed {alg: RS256, typ: JWT} header, the standard
// exp/iss/sub/aud claims, and one boolean metascope claim per
// comma-separated scope, keyed by "https://{endpoint}/s/{scope}".
//
// Fails with *ValidationError when no scope is present, *KeyFormatError /
// *KeyImportError when the private key cannot be parsed.
func BuildAssertion(creds ServiceAccountCredentials) (string, error) {
	endpoint := strings.TrimSpace(creds.Endpoint)
	if endpoint == "" {
		return "", &ValidationError{Field: "endpoint", Reason: "auth endpoint host is required"}
	}

	scopes := splitScopes(creds.Scopes)
	if len(scopes) == 0 {
		return "", &ValidationError{Field: "scopes", Reason: "at least one scope is required"}
	}

	key, err := ImportPrivateKey(creds.PrivateKeyPEM)
	if err != nil {
		return "", err
	}

	claims := map[string]interface{}{
		"exp": time.Now().Add(assertionTTL).Unix(),
		"iss": creds.Org,
		"sub": creds.TechnicalAccountID,
		"aud": fmt.Sprintf("https://%s/c/%s", endpoint, creds.ClientID),
	}
	for _, scope := range scopes {
		claims[fmt.Sprintf("https://%s/s/%s", endpoint, scope)] = true
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("init signer: %w", err)
	}

	raw, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return raw, nil
}

func splitScopes(scopes string) []string {
	var out []string
	for _, s := range strings.Split(scopes, ",") {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
