package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_BurstThenDeny(t *testing.T) {
	l := NewMemoryLimiter(0, 3)

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok, "request %d should be allowed", i+1)
	}
	ok, err := l.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "request over burst should be denied")

	// other keys have their own bucket
	ok, err = l.Allow(context.Background(), "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)
}

type stubLimiter struct {
	ok  bool
	err error
}

func (s *stubLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return s.ok, s.err
}

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name       string
		limiter    Limiter
		wantStatus int
		nextCalled bool
	}{
		{"allowed", &stubLimiter{ok: true}, http.StatusOK, true},
		{"denied", &stubLimiter{ok: false}, http.StatusTooManyRequests, false},
		{"limiter error fails open", &stubLimiter{err: errors.New("redis down")}, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})
			handler := RateLimit(tt.limiter, logger)(next)

			req := httptest.NewRequest(http.MethodPost, "http://test/checkins/scan", nil)
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.nextCalled, nextCalled)
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://test/", nil)
	req.RemoteAddr = "10.0.0.1:5432"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}
