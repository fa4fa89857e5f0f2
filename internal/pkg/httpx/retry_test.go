package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type retryStatusErr struct {
	code  int
	after time.Duration
}

func (e retryStatusErr) Error() string             { return http.StatusText(e.code) }
func (e retryStatusErr) HTTPStatusCode() int       { return e.code }
func (e retryStatusErr) RetryAfter() time.Duration { return e.after }

func fastPolicy(n int) RetryPolicy {
	return RetryPolicy{MaxRetries: n, Base: time.Millisecond, Max: 5 * time.Millisecond}
}

func TestRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), nil, "t", fastPolicy(3), func(context.Context) (*http.Response, error) {
		calls++
		if calls < 2 {
			return nil, retryStatusErr{code: http.StatusServiceUnavailable}
		}
		return nil, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestRetry_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), nil, "t", fastPolicy(3), func(context.Context) (*http.Response, error) {
		calls++
		return nil, retryStatusErr{code: http.StatusBadRequest}
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestRetry_ExhaustsPolicy(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), nil, "t", fastPolicy(2), func(context.Context) (*http.Response, error) {
		calls++
		return nil, retryStatusErr{code: http.StatusTooManyRequests, after: time.Hour}
	})
	var se retryStatusErr
	require.True(t, errors.As(err, &se))
	require.Equal(t, 3, calls)
}

func TestRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, nil, "t", fastPolicy(2), func(context.Context) (*http.Response, error) {
		t.Fatal("attempt should not run")
		return nil, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
