// Package transport holds the thin HTTP plumbing shared by the IMS
// exchanger and the DAM client: client construction and the mapping of
// transport failures onto distinct timeout / cancellation / network error
// kinds. No retries happen at this layer; callers own retry policy.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrTimeout reports that an upstream call exceeded the caller-supplied
	// deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrCancelled reports that the caller aborted an in-flight call.
	ErrCancelled = errors.New("request cancelled")
)

// NetworkError reports a transport-level failure before a response was
// received, distinct from timeout and cancellation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NewClient builds an HTTP client with the given overall timeout. A zero
// timeout leaves deadline control entirely to the request context.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// ClassifyError maps a failed http.Client call onto the error taxonomy.
// The context is consulted first so a deadline that fired during dialing is
// still reported as a timeout rather than a generic transport failure.
func ClassifyError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, ErrCancelled)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return &NetworkError{Op: op, Err: err}
}
