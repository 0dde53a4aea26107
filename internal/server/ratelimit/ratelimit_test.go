package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *time.Time) {
	t.Helper()
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(60, 300)

	tests := []struct {
		name   string
		path   string
		method string
		want   string
	}{
		{name: "rank prefix", path: "/v1/rank/candidates", method: http.MethodPost, want: "/v1/rank/"},
		{name: "rank jobs", path: "/v1/rank/jobs", method: http.MethodPost, want: "/v1/rank/"},
		{name: "explain exact", path: "/v1/explain", method: http.MethodPost, want: "/v1/explain"},
		{name: "wrong method", path: "/v1/explain", method: http.MethodGet},
		{name: "unknown path", path: "/v2/other", method: http.MethodPost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Path)
		})
	}

	for _, path := range []string{"/health", "/metrics"} {
		got := MatchEndpoint(path, http.MethodGet, configs)
		require.NotNil(t, got)
		assert.Zero(t, got.Limit, "%s is unlimited", path)
	}
}

func TestLimiter_BurstThenRefill(t *testing.T) {
	l, now := newTestLimiter(t, NewConfig(true, 600, 60, 300, nil))

	for i := 0; i < 10; i++ {
		ok, info := l.Allow("10.0.0.1", "/v1/rank/candidates", http.MethodPost)
		require.True(t, ok, "request %d within burst", i)
		assert.Equal(t, 60, info.Limit)
	}

	ok, info := l.Allow("10.0.0.1", "/v1/rank/jobs", http.MethodPost)
	assert.False(t, ok, "both rank routes share one tier")
	assert.Equal(t, time.Second, info.RetryAfter)

	ok, _ = l.Allow("10.0.0.2", "/v1/rank/jobs", http.MethodPost)
	assert.True(t, ok, "other clients have their own bucket")

	*now = now.Add(time.Second)
	ok, _ = l.Allow("10.0.0.1", "/v1/rank/jobs", http.MethodPost)
	assert.True(t, ok, "one token refills per second at 60/min")
}

func TestLimiter_DefaultTierAndExemptions(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(true, 1, 1, 1, []string{"127.0.0.1"}))

	ok, _ := l.Allow("10.0.0.1", "/unknown", http.MethodGet)
	assert.True(t, ok)
	ok, _ = l.Allow("10.0.0.1", "/unknown", http.MethodGet)
	assert.False(t, ok)

	for i := 0; i < 5; i++ {
		ok, _ = l.Allow("10.0.0.1", "/health", http.MethodGet)
		assert.True(t, ok)
		ok, _ = l.Allow("127.0.0.1", "/v1/rank/candidates", http.MethodPost)
		assert.True(t, ok)
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, NewConfig(false, 1, 1, 1, nil))
	for i := 0; i < 5; i++ {
		ok, info := l.Allow("10.0.0.1", "/v1/rank/candidates", http.MethodPost)
		assert.True(t, ok)
		assert.True(t, info.Allowed)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l, now := newTestLimiter(t, NewConfig(true, 10, 10, 10, nil))
	l.Allow("10.0.0.1", "/v1/explain", http.MethodPost)
	require.Len(t, l.buckets, 1)

	*now = now.Add(2 * time.Hour)
	l.cleanup()
	assert.Empty(t, l.buckets)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(nil)
	assert.NotPanics(t, func() {
		l.Stop()
		l.Stop()
	})
}
