// Package metrics defines the Prometheus collectors for ranking, filtering,
// embedding and HTTP activity, and exposes a scrape handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	PairsScoredTotal     *prometheus.CounterVec
	PairsFilteredTotal   *prometheus.CounterVec
	PairFailuresTotal    *prometheus.CounterVec
	RankDuration         *prometheus.HistogramVec
	EmbeddingCallsTotal  *prometheus.CounterVec
	EmbeddingLatency     prometheus.Histogram
	EmbeddingCacheHits   prometheus.Counter
	EmbeddingCacheMisses prometheus.Counter
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
// A nil reg uses a fresh registry, which keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		PairsScoredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matcher_pairs_scored_total",
				Help: "Candidate-job pairs scored, by ranking direction.",
			},
			[]string{"direction"},
		),
		PairsFilteredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matcher_pairs_filtered_total",
				Help: "Pairs removed by the hard filter, by reason.",
			},
			[]string{"reason"},
		),
		PairFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matcher_pair_failures_total",
				Help: "Pairs excluded because of an error, by kind (malformed_input, external_service).",
			},
			[]string{"kind"},
		),
		RankDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matcher_rank_duration_seconds",
				Help:    "Latency of a full ranking run in seconds.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"direction"},
		),
		EmbeddingCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matcher_embedding_calls_total",
				Help: "Calls to the embedding backend by status (ok, error).",
			},
			[]string{"status"},
		),
		EmbeddingLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "matcher_embedding_latency_seconds",
				Help:    "Latency of embedding backend calls in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		EmbeddingCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "matcher_embedding_cache_hits_total",
				Help: "Embedding cache hits.",
			},
		),
		EmbeddingCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "matcher_embedding_cache_misses_total",
				Help: "Embedding cache misses.",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
	}

	reg.MustRegister(
		m.PairsScoredTotal,
		m.PairsFilteredTotal,
		m.PairFailuresTotal,
		m.RankDuration,
		m.EmbeddingCallsTotal,
		m.EmbeddingLatency,
		m.EmbeddingCacheHits,
		m.EmbeddingCacheMisses,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}

	return m
}

// Handler returns the scrape handler for the registry the metrics were registered with
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// PairScored counts one scored pair
func (m *Metrics) PairScored(direction string) {
	if m == nil {
		return
	}
	m.PairsScoredTotal.WithLabelValues(direction).Inc()
}

// PairFiltered counts one filtered pair
func (m *Metrics) PairFiltered(reason string) {
	if m == nil {
		return
	}
	m.PairsFilteredTotal.WithLabelValues(reason).Inc()
}

// PairFailed counts one pair excluded by an error
func (m *Metrics) PairFailed(kind string) {
	if m == nil {
		return
	}
	m.PairFailuresTotal.WithLabelValues(kind).Inc()
}

// ObserveRank records the duration of a ranking run
func (m *Metrics) ObserveRank(direction string, d time.Duration) {
	if m == nil {
		return
	}
	m.RankDuration.WithLabelValues(direction).Observe(d.Seconds())
}

// ObserveEmbedding records one backend call
func (m *Metrics) ObserveEmbedding(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EmbeddingCallsTotal.WithLabelValues(status).Inc()
	m.EmbeddingLatency.Observe(d.Seconds())
}

// CacheHit counts an embedding cache hit
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.EmbeddingCacheHits.Inc()
}

// CacheMiss counts an embedding cache miss
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.EmbeddingCacheMisses.Inc()
}
