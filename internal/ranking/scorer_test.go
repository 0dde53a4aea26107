package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type modelFunc func(ctx context.Context, candidate, job []float64) (float64, error)

func (f modelFunc) Score(ctx context.Context, candidate, job []float64) (float64, error) {
	return f(ctx, candidate, job)
}

func testPair() *Pair {
	c, j := cand("c1"), jobPosting("j1")
	c.Experience[0].Description = "Python services"
	j.Description = "Python services"
	return &Pair{Candidate: &c, Job: &j, Features: features.Vector{"b": 2, "a": 1}}
}

func TestBuildRepresentation(t *testing.T) {
	v := features.Vector{"c": 3, "a": 1, "b": math.Inf(1)}

	out := BuildRepresentation(v, []float64{9, 8}, 4, 3)
	assert.Equal(t, []float64{1, 0, 3, 0, 9, 8, 0}, out, "sorted keys, Inf zeroed, right padded")

	out = BuildRepresentation(v, []float64{9, 8, 7, 6}, 2, 2)
	assert.Equal(t, []float64{1, 0, 9, 8}, out, "right truncated")
}

func TestLearnedScorer(t *testing.T) {
	var gotCandidate, gotJob []float64
	model := modelFunc(func(_ context.Context, candidate, job []float64) (float64, error) {
		gotCandidate, gotJob = candidate, job
		return 1.7, nil
	})
	s := NewLearnedScorer(model, embedding.NewHashEmbedder(16), LearnedScorerConfig{FeatureWidth: 4, EmbeddingWidth: 8})

	score, err := s.Score(context.Background(), testPair())
	require.NoError(t, err)
	assert.Equal(t, 1.0, score, "clamped to [-1, 1]")
	assert.Len(t, gotCandidate, 12)
	assert.Len(t, gotJob, 12)
	assert.Equal(t, []float64{1, 2, 0, 0}, gotCandidate[:4])
	assert.Equal(t, gotCandidate[:4], gotJob[:4])
}

func TestLearnedScorer_Defaults(t *testing.T) {
	s := NewLearnedScorer(nil, embedding.NewHashEmbedder(0), LearnedScorerConfig{})
	c, j, err := s.Representations(context.Background(), testPair())
	require.NoError(t, err)
	assert.Len(t, c, DefaultFeatureWidth+DefaultEmbeddingWidth)
	assert.Len(t, j, DefaultFeatureWidth+DefaultEmbeddingWidth)
}

func TestLearnedScorer_Failures(t *testing.T) {
	var calls atomic.Int32
	model := modelFunc(func(_ context.Context, _, _ []float64) (float64, error) {
		calls.Add(1)
		return 0, errors.New("model offline")
	})
	s := NewLearnedScorer(model, embedding.NewHashEmbedder(8), LearnedScorerConfig{
		Timeout: time.Second,
		Retry:   resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond},
	})

	_, err := s.Score(context.Background(), testPair())
	var extErr *ExternalServiceError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "scorer", extErr.Service)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPScorer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body struct {
			Candidate []float64 `json:"candidate"`
			Job       []float64 `json:"job"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]float64{"score": body.Candidate[0] - body.Job[0]})
	}))
	defer srv.Close()

	h := NewHTTPScorer(srv.URL, time.Second)
	score, err := h.Score(context.Background(), []float64{0.75}, []float64{0.25})
	require.NoError(t, err)
	assert.Equal(t, 0.5, score)
}

func TestHTTPScorer_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPScorer(srv.URL, 0).Score(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
	assert.Contains(t, err.Error(), "model not loaded")

	_, err = NewHTTPScorer(srv.URL+"/empty", 0).Score(context.Background(), nil, nil)
	assert.ErrorContains(t, err, "missing score")
}

func TestInterpretableScorer(t *testing.T) {
	p := testPair()
	p.Layers.Base = 0.42
	score, err := InterpretableScorer{}.Score(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0.42, score)
}
