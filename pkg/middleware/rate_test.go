package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/config"
)

func doRateLimited(t *testing.T, h http.Handler, remoteAddr, forwardedFor string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitIgnoresForwardedForByDefault(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	limited := RateLimit(2, time.Minute)(ok)

	// Rotating the header must not mint fresh buckets: the connection's
	// own address is what counts.
	require.Equal(t, http.StatusOK, doRateLimited(t, limited, "203.0.113.7:1111", "10.0.0.1"))
	require.Equal(t, http.StatusOK, doRateLimited(t, limited, "203.0.113.7:2222", "10.0.0.2"))
	require.Equal(t, http.StatusTooManyRequests, doRateLimited(t, limited, "203.0.113.7:3333", "10.0.0.3"))
}

func TestRateLimitHonorsForwardedForBehindProxy(t *testing.T) {
	config.Set("TRUST_PROXY", "true")
	t.Cleanup(func() { config.Set("TRUST_PROXY", "false") })

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	limited := RateLimit(1, time.Minute)(ok)

	// Behind a trusted proxy every request shares the proxy's RemoteAddr,
	// so the first forwarded hop distinguishes clients.
	require.Equal(t, http.StatusOK, doRateLimited(t, limited, "203.0.113.50:1111", "198.51.100.4, 203.0.113.50"))
	require.Equal(t, http.StatusOK, doRateLimited(t, limited, "203.0.113.50:1111", "198.51.100.5, 203.0.113.50"))
	require.Equal(t, http.StatusTooManyRequests, doRateLimited(t, limited, "203.0.113.50:1111", "198.51.100.4, 203.0.113.50"))
}
