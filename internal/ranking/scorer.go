// Package ranking orders candidate pools for a job and job pools for a candidate.
package ranking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/resilience"
	"github.com/jonathan/talent-matcher/internal/scoring"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Pair is one candidate-job pair with its extracted features and layer scores
type Pair struct {
	Candidate *types.Candidate
	Job       *types.JobPosting
	Features  features.Vector
	Layers    scoring.LayerScores
}

// PairScorer produces the ranking score for a pair
type PairScorer interface {
	Score(ctx context.Context, p *Pair) (float64, error)
}

// ExternalServiceError reports a failed or timed out embedder or scorer call
type ExternalServiceError struct {
	Service string
	Cause   error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Service, e.Cause)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Cause
}

// InterpretableScorer ranks by S_base
type InterpretableScorer struct{}

// Score returns the pair's aggregate layer score
func (InterpretableScorer) Score(_ context.Context, p *Pair) (float64, error) {
	return p.Layers.Base, nil
}

// Model is a learned similarity model over fixed-width representations
type Model interface {
	Score(ctx context.Context, candidate, job []float64) (float64, error)
}

// LearnedScorer ranks by a learned model's similarity in [-1, 1]
type LearnedScorer struct {
	model          Model
	embedder       embedding.Embedder
	featureWidth   int
	embeddingWidth int
	timeout        time.Duration
	retry          resilience.RetryConfig
}

// LearnedScorerConfig sizes the representation and bounds model calls
type LearnedScorerConfig struct {
	FeatureWidth   int
	EmbeddingWidth int
	Timeout        time.Duration
	Retry          resilience.RetryConfig
}

// Default representation widths
const (
	DefaultFeatureWidth   = 150
	DefaultEmbeddingWidth = embedding.DefaultDimension
)

// NewLearnedScorer creates a scorer over model. Non-positive widths use the defaults.
func NewLearnedScorer(model Model, embedder embedding.Embedder, cfg LearnedScorerConfig) *LearnedScorer {
	if cfg.FeatureWidth <= 0 {
		cfg.FeatureWidth = DefaultFeatureWidth
	}
	if cfg.EmbeddingWidth <= 0 {
		cfg.EmbeddingWidth = DefaultEmbeddingWidth
	}
	return &LearnedScorer{
		model:          model,
		embedder:       embedder,
		featureWidth:   cfg.FeatureWidth,
		embeddingWidth: cfg.EmbeddingWidth,
		timeout:        cfg.Timeout,
		retry:          cfg.Retry,
	}
}

// Score builds both representations and asks the model for their similarity
func (s *LearnedScorer) Score(ctx context.Context, p *Pair) (float64, error) {
	candidateRepr, jobRepr, err := s.Representations(ctx, p)
	if err != nil {
		return 0, err
	}

	var (
		mu    sync.Mutex
		score float64
	)
	err = resilience.Call(ctx, "scorer", s.timeout, s.retry, func(ctx context.Context) error {
		v, err := s.model.Score(ctx, candidateRepr, jobRepr)
		if err != nil {
			return err
		}
		mu.Lock()
		score = v
		mu.Unlock()
		return nil
	})
	if err != nil {
		return 0, &ExternalServiceError{Service: "scorer", Cause: err}
	}
	mu.Lock()
	defer mu.Unlock()
	return min(max(score, -1), 1), nil
}

// Representations returns the candidate-side and job-side model inputs
func (s *LearnedScorer) Representations(ctx context.Context, p *Pair) ([]float64, []float64, error) {
	vectors, err := s.embedder.EncodeBatch(ctx, []string{p.Candidate.ExperienceText(), p.Job.Text()})
	if err != nil {
		return nil, nil, &ExternalServiceError{Service: "embedder", Cause: err}
	}
	return BuildRepresentation(p.Features, vectors[0], s.featureWidth, s.embeddingWidth),
		BuildRepresentation(p.Features, vectors[1], s.featureWidth, s.embeddingWidth),
		nil
}
