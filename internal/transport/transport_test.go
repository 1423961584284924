package transport_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shin2080/asset-selector-http-api/internal/transport"
)

func TestClassifyErrorDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := transport.ClassifyError(ctx, "fetch", errors.New("dial tcp: operation aborted"))
	require.ErrorIs(t, err, transport.ErrTimeout)
}

func TestClassifyErrorCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := transport.ClassifyError(ctx, "fetch", errors.New("dial tcp: operation aborted"))
	require.ErrorIs(t, err, transport.ErrCancelled)
}

func TestClassifyErrorClientTimeout(t *testing.T) {
	// http.Client's own Timeout surfaces as a url.Error with Timeout()
	// true, without touching the request context.
	uerr := &url.Error{Op: "Get", URL: "http://example.com", Err: timeoutErr{}}
	err := transport.ClassifyError(context.Background(), "fetch", uerr)
	require.ErrorIs(t, err, transport.ErrTimeout)
}

func TestClassifyErrorNetwork(t *testing.T) {
	err := transport.ClassifyError(context.Background(), "fetch", errors.New("connection refused"))

	var netErr *transport.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, "fetch", netErr.Op)
	require.NotErrorIs(t, err, transport.ErrTimeout)
	require.NotErrorIs(t, err, transport.ErrCancelled)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
