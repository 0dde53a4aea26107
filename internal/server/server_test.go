package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/jonathan/talent-matcher/internal/dataset"
	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/filter"
	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/jonathan/talent-matcher/internal/pipeline"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/jonathan/talent-matcher/internal/server/ratelimit"
	"github.com/jonathan/talent-matcher/internal/types"
)

func newTestServer(t *testing.T, rl *ratelimit.Config) *Server {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.GeminiAPIKey = ""

	rec, err := pipeline.New(context.Background(), cfg, pipeline.Options{Metrics: metrics.New(prometheus.NewRegistry())})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	if rl == nil {
		rl = ratelimit.NewConfig(false, 0, 0, 0, nil)
	}
	rl.CleanupInterval = 0
	s := New(rec, Config{Port: 0, RateLimit: rl}, nil)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func loadFixtures(t *testing.T) ([]types.Candidate, []types.JobPosting) {
	t.Helper()
	candidates, err := dataset.LoadCandidates(filepath.Join("..", "dataset", "testdata", "candidates.json"))
	require.NoError(t, err)
	jobs, err := dataset.LoadJobs(filepath.Join("..", "dataset", "testdata", "jobs.json"))
	require.NoError(t, err)
	return candidates, jobs
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.1.2.3:4567"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleRankCandidates(t *testing.T) {
	s := newTestServer(t, nil)
	candidates, jobs := loadFixtures(t)

	rec := do(t, s.Handler(), http.MethodPost, "/v1/rank/candidates", map[string]any{
		"job":        jobs[0],
		"candidates": candidates,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res ranking.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, ranking.DirectionCandidates, res.Direction)
	assert.Equal(t, "job-001", res.SubjectID)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "cand-001", res.Matches[0].ID)
	assert.Equal(t, 1, res.Matches[0].Rank)
	require.Len(t, res.Filtered, 1)
	assert.Equal(t, filter.ReasonMandatoryLanguage, res.Filtered[0].Reason)
}

func TestHandleRankCandidates_Overrides(t *testing.T) {
	s := newTestServer(t, nil)
	candidates, jobs := loadFixtures(t)

	rec := do(t, s.Handler(), http.MethodPost, "/v1/rank/candidates", map[string]any{
		"job":             jobs[0],
		"candidates":      candidates,
		"top_k":           1,
		"use_hard_filter": false,
		"explain":         true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res ranking.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Matches, 1)
	assert.Empty(t, res.Filtered)
	require.NotNil(t, res.Matches[0].Explanation)
	assert.Equal(t, "job-001", res.Matches[0].Explanation.JobID)
}

func TestHandleRankJobs(t *testing.T) {
	s := newTestServer(t, nil)
	candidates, jobs := loadFixtures(t)

	rec := do(t, s.Handler(), http.MethodPost, "/v1/rank/jobs", map[string]any{
		"candidate": candidates[1],
		"jobs":      jobs,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res ranking.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, ranking.DirectionJobs, res.Direction)
	assert.Equal(t, "cand-002", res.SubjectID)
	assert.Len(t, res.Matches, 2)
}

func TestHandleExplain(t *testing.T) {
	s := newTestServer(t, nil)
	candidates, jobs := loadFixtures(t)

	rec := do(t, s.Handler(), http.MethodPost, "/v1/explain", map[string]any{
		"candidate": candidates[2],
		"job":       jobs[0],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res ExplainResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Explanation)
	assert.Equal(t, "cand-003", res.Explanation.CandidateID)
	assert.True(t, res.Filter.Filtered)
	assert.Equal(t, filter.ReasonMandatoryLanguage, res.Filter.Reason)
}

func TestHandlers_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)
	candidates, jobs := loadFixtures(t)
	bad := candidates[0]
	bad.Skills = []types.SkillClaim{{Name: ""}}

	tests := []struct {
		name    string
		path    string
		body    any
		wantMsg string
	}{
		{name: "malformed json", path: "/v1/rank/candidates", body: `{"job":`, wantMsg: "invalid JSON body"},
		{name: "missing job", path: "/v1/rank/candidates", body: map[string]any{"candidates": candidates}, wantMsg: "Job"},
		{name: "missing candidate", path: "/v1/explain", body: map[string]any{"job": jobs[0]}, wantMsg: "Candidate"},
		{name: "negative top_k", path: "/v1/rank/jobs", body: map[string]any{"candidate": candidates[0], "jobs": jobs, "top_k": -1}, wantMsg: "TopK"},
		{name: "invalid pool entry", path: "/v1/rank/candidates", body: map[string]any{"job": jobs[0], "candidates": []types.Candidate{bad}}, wantMsg: "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], "validation error")
			assert.Contains(t, body["error"], tt.wantMsg)
		})
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, ratelimit.NewConfig(true, 100, 1, 100, nil))
	candidates, jobs := loadFixtures(t)
	h := s.Handler()
	body := map[string]any{"job": jobs[1], "candidates": candidates}

	rec := do(t, h, http.MethodPost, "/v1/rank/candidates", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = do(t, h, http.MethodPost, "/v1/rank/candidates", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	rec = do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "health is never limited")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()

	do(t, h, http.MethodGet, "/health", nil)
	rec := do(t, h, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: &ErrValidation{Field: "job", Message: "required"}, want: http.StatusBadRequest},
		{name: "malformed input", err: fmt.Errorf("pair: %w", &features.MalformedInputError{Field: "experience", Message: "missing start date"}), want: http.StatusBadRequest},
		{name: "scorer", err: &ranking.ExternalServiceError{Service: "scorer", Cause: errors.New("boom")}, want: http.StatusBadGateway},
		{name: "embedder", err: &embedding.Error{Backend: "gemini", Cause: errors.New("boom")}, want: http.StatusBadGateway},
		{name: "deadline", err: &ranking.ExternalServiceError{Service: "scorer", Cause: context.DeadlineExceeded}, want: http.StatusGatewayTimeout},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
