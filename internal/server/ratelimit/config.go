package ratelimit

import (
	"net/http"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (prefix match when it ends in "/")
	Method string        // HTTP method
	Limit  int           // Maximum requests per window; <= 0 is unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds a configuration with per-minute limits for the default,
// ranking and explanation tiers.
func NewConfig(enabled bool, defaultLimit, rankLimit, explainLimit int, whitelist []string) *Config {
	wl := make(map[string]bool, len(whitelist))
	for _, ip := range whitelist {
		if ip != "" {
			wl[ip] = true
		}
	}
	return &Config{
		Enabled:         enabled,
		DefaultLimit:    defaultLimit,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       wl,
		EndpointConfigs: DefaultEndpointConfigs(rankLimit, explainLimit),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific tiers. Ranking a pool
// embeds every pair, so it gets the strictest limit.
func DefaultEndpointConfigs(rankLimit, explainLimit int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/v1/rank/", Method: http.MethodPost, Limit: rankLimit, Window: time.Minute, Burst: max(rankLimit/6, 1)},
		{Path: "/v1/explain", Method: http.MethodPost, Limit: explainLimit, Window: time.Minute, Burst: max(explainLimit/6, 1)},
	}
}
