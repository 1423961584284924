package ims

import "fmt"

// ValidationError reports bad or missing caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// KeyFormatError reports PEM text that could not even be decoded to DER,
// before any import attempt.
type KeyFormatError struct {
	Reason string
	Err    error
}

func (e *KeyFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("private key format: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("private key format: %s", e.Reason)
}

func (e *KeyFormatError) Unwrap() error { return e.Err }

// KeyImportError reports DER bytes rejected by both the PKCS#8 and the
// wrapped-PKCS#1 import attempts.
type KeyImportError struct {
	PKCS8Err error
	PKCS1Err error
}

func (e *KeyImportError) Error() string {
	return fmt.Sprintf("private key is not a recognizable RSA PEM key (pkcs8: %v; pkcs1: %v)", e.PKCS8Err, e.PKCS1Err)
}

// ExchangeError reports a non-success response from the token exchange
// intermediary, carrying the HTTP status and raw body for diagnostics.
type ExchangeError struct {
	Status int
	Body   string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange rejected (status %d): %s", e.Status, e.Body)
}
