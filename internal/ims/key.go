package ims

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
)

// rsaAlgorithmIdentifier is the DER encoding of
// AlgorithmIdentifier{rsaEncryption (1.2.840.113549.1.1.1), NULL}.
var rsaAlgorithmIdentifier = []byte{
	0x30, 0x0d,
	0x06, 0x09, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x01, 0x01,
	0x05, 0x00,
}

// ImportPrivateKey parses a PEM-armored RSA private key in either PKCS#8
// ("BEGIN PRIVATE KEY") or legacy PKCS#1 ("BEGIN RSA PRIVATE KEY")
// wrapping. The legacy form is handled by synthesizing a minimal PKCS#8
// envelope around the PKCS#1 payload and importing that.
//
// Returns *KeyFormatError when the PEM body is not valid base64 and
// *KeyImportError when the decoded bytes are rejected by both import
// attempts.
func ImportPrivateKey(pemText string) (*rsa.PrivateKey, error) {
	der, err := decodePEMBody(pemText)
	if err != nil {
		return nil, err
	}

	key, err8 := parsePKCS8RSA(der)
	if err8 == nil {
		return key, nil
	}

	key, err1 := parsePKCS8RSA(wrapPKCS1(der))
	if err1 == nil {
		return key, nil
	}

	return nil, &KeyImportError{PKCS8Err: err8, PKCS1Err: err1}
}

// decodePEMBody strips PEM armor and whitespace and base64-decodes the
// remainder. Keys pasted from JSON or env files often carry literal \n /
// \r\n escape sequences instead of real newlines; both spellings are
// normalized before the armor lines are removed.
func decodePEMBody(pemText string) ([]byte, error) {
	normalized := strings.NewReplacer(`\r\n`, "\n", `\n`, "\n", "\r\n", "\n", "\r", "\n").Replace(pemText)

	var body strings.Builder
	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-----") {
			continue
		}
		body.WriteString(line)
	}
	if body.Len() == 0 {
		return nil, &KeyFormatError{Reason: "no PEM body found"}
	}

	der, err := base64.StdEncoding.DecodeString(body.String())
	if err != nil {
		return nil, &KeyFormatError{Reason: "PEM body is not valid base64", Err: err}
	}
	return der, nil
}

func parsePKCS8RSA(der []byte) (*rsa.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA key (%T)", parsed)
	}
	return key, nil
}

// wrapPKCS1 builds a PKCS#8 PrivateKeyInfo around a raw PKCS#1
// RSAPrivateKey: an outer SEQUENCE holding a zero version INTEGER, the RSA
// AlgorithmIdentifier, and the original bytes as an OCTET STRING. Length
// fields are computed after the payload size is known.
func wrapPKCS1(pkcs1 []byte) []byte {
	version := []byte{0x02, 0x01, 0x00}

	octet := append([]byte{0x04}, derLength(len(pkcs1))...)
	octet = append(octet, pkcs1...)

	inner := len(version) + len(rsaAlgorithmIdentifier) + len(octet)
	out := append([]byte{0x30}, derLength(inner)...)
	out = append(out, version...)
	out = append(out, rsaAlgorithmIdentifier...)
	out = append(out, octet...)
	return out
}

// derLength encodes a DER length field, using the long form when the value
// does not fit in seven bits.
func derLength(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}
	var content []byte
	for v := n; v > 0; v >>= 8 {
		content = append([]byte{byte(v)}, content...)
	}
	return append([]byte{0x80 | byte(len(content))}, content...)
}
