package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

func newTestClient(retries int) *Client {
	return NewClient(ClientOptions{
		Timeout:         2 * time.Second,
		RequestsPerSec:  100,
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
	})
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.Header.Get("User-Agent") != "Mozilla/5.0" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0")

	body, err := newTestClient(3).Get(context.Background(), server.URL, header)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGet_StopsAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(2).Get(context.Background(), server.URL, nil)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGet_ClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(5).Get(context.Background(), server.URL, nil)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Contains(t, statusErr.Body, "not found")
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestRetryable(t *testing.T) {
	require.True(t, Retryable(http.StatusTooManyRequests))
	require.True(t, Retryable(http.StatusInternalServerError))
	require.False(t, Retryable(http.StatusUnauthorized))
	require.False(t, Retryable(http.StatusBadRequest))
}

func TestGet_StopsRetryingWhenContextExpires(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		Timeout:         2 * time.Second,
		RequestsPerSec:  100,
		MaxRetries:      1000,
		InitialInterval: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Get(ctx, server.URL, nil)
	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Less(t, atomic.LoadInt32(&calls), int32(1000))
}

func TestNewBackOff_BoundedByRetryCount(t *testing.T) {
	client := newTestClient(2)
	policy := client.newBackOff(context.Background())
	for i := 0; i < 2; i++ {
		require.NotEqual(t, backoff.Stop, policy.NextBackOff())
	}
	require.Equal(t, backoff.Stop, policy.NextBackOff())
}
