package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

var fastBackoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

func TestClientFetch(t *testing.T) {
	t.Run("returns body on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "v", r.URL.Query().Get("k"))
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		c := NewClient(srv.Client(), fastBackoff)
		body, err := c.Fetch(context.Background(), "test", weather.Request{
			Endpoint: srv.URL,
			Query:    map[string][]string{"k": {"v"}},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(body))
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewClient(srv.Client(), fastBackoff)
		_, err := c.Fetch(context.Background(), "flaky", weather.Request{Endpoint: srv.URL})
		require.ErrorIs(t, err, errServerError)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient(srv.Client(), fastBackoff)
		_, err := c.Fetch(context.Background(), "auth", weather.Request{Endpoint: srv.URL})
		require.ErrorIs(t, err, errUnexpected)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := NewClient(http.DefaultClient, fastBackoff)
		_, err := c.Fetch(ctx, "cancelled", weather.Request{Endpoint: "http://127.0.0.1:1"})
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("breakers are per source", func(t *testing.T) {
		c := NewClient(http.DefaultClient, fastBackoff)
		assert.Same(t, c.breaker("a"), c.breaker("a"))
		assert.NotSame(t, c.breaker("a"), c.breaker("b"))
	})
}
