package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDo_RetriesOnceThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{Retries: 1, Backoff: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &StatusError{Code: http.StatusServiceUnavailable, Err: errors.New("down")}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_GivesUpAfterRetries(t *testing.T) {
	calls := 0
	boom := errors.New("timeout")
	err := Do(context.Background(), Policy{Retries: 1, Backoff: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{Retries: 3}, func(ctx context.Context) error {
		calls++
		return &StatusError{Code: http.StatusUnauthorized, Err: errors.New("bad key")}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Do(ctx, Policy{Retries: 2}, func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &StatusError{Code: 429, Err: errors.New("slow down")}, true},
		{"server error", &StatusError{Code: 502, Err: errors.New("bad gateway")}, true},
		{"client error", &StatusError{Code: 400, Err: errors.New("bad request")}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"grpc unavailable", status.Error(codes.Unavailable, "conn refused"), true},
		{"grpc not found", status.Error(codes.NotFound, "no collection"), false},
		{"permanent", Permanent(errors.New("dimension mismatch")), false},
		{"unknown", errors.New("unexpected EOF"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Retryable(tc.err))
		})
	}
}
