package ranking

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/explain"
	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/filter"
	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/jonathan/talent-matcher/internal/scoring"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Ranking directions
const (
	DirectionCandidates = "candidates_for_job"
	DirectionJobs       = "jobs_for_candidate"
)

// Failure kinds
const (
	KindMalformedInput  = "malformed_input"
	KindExternalService = "external_service"
)

// Options control one ranking run
type Options struct {
	// TopK caps the returned matches; <= 0 returns all
	TopK int
	// UseHardFilter drops ineligible pairs before scoring
	UseHardFilter bool
	// Explain attaches an explanation to each returned match
	Explain bool
}

// Match is one ranked entry of the pool
type Match struct {
	ID            string               `json:"id"`
	Rank          int                  `json:"rank"`
	Score         float64              `json:"score"`
	Layers        scoring.LayerScores  `json:"layer_scores"`
	MatchedSkills []string             `json:"matched_skills"`
	Explanation   *explain.Explanation `json:"explanation,omitempty"`
}

// Filtered is a pool entry removed by the hard filter
type Filtered struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Failure is a pool entry excluded because its pair could not be evaluated
type Failure struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// Result is the outcome of one ranking run
type Result struct {
	RunID     string     `json:"run_id"`
	Direction string     `json:"direction"`
	SubjectID string     `json:"subject_id"`
	PoolSize  int        `json:"pool_size"`
	Matches   []Match    `json:"matches"`
	Filtered  []Filtered `json:"filtered"`
	Failures  []Failure  `json:"failures"`
}

// Config wires a Ranker
type Config struct {
	// Workers bounds concurrent pair evaluations; <= 0 means 4
	Workers int
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Ranker runs filter, score, sort and top-K over a pool
type Ranker struct {
	extractor *features.Extractor
	scoring   *scoring.Engine
	explainer *explain.Engine
	scorer    PairScorer
	workers   int
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewRanker creates a ranker. A nil scorer ranks by the interpretable score.
func NewRanker(extractor *features.Extractor, scorer PairScorer, cfg Config) *Ranker {
	if scorer == nil {
		scorer = InterpretableScorer{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	engine := scoring.NewEngine(extractor)
	return &Ranker{
		extractor: extractor,
		scoring:   engine,
		explainer: explain.NewEngine(extractor, engine),
		scorer:    scorer,
		workers:   cfg.Workers,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// RankCandidates ranks candidates for job
func (r *Ranker) RankCandidates(ctx context.Context, job *types.JobPosting, candidates []types.Candidate, opts Options) (*Result, error) {
	return r.rank(ctx, DirectionCandidates, job.ID, len(candidates), opts, func(i int) (*types.Candidate, *types.JobPosting, string) {
		return &candidates[i], job, candidates[i].ID
	})
}

// RankJobs ranks jobs for candidate
func (r *Ranker) RankJobs(ctx context.Context, candidate *types.Candidate, jobs []types.JobPosting, opts Options) (*Result, error) {
	return r.rank(ctx, DirectionJobs, candidate.ID, len(jobs), opts, func(i int) (*types.Candidate, *types.JobPosting, string) {
		return candidate, &jobs[i], jobs[i].ID
	})
}

// outcome is the evaluation of one pool entry; exactly one of its parts is set
type outcome struct {
	pair     *Pair
	match    *Match
	filtered *Filtered
	failure  *Failure
}

func (r *Ranker) rank(ctx context.Context, direction, subjectID string, n int, opts Options,
	pairAt func(i int) (*types.Candidate, *types.JobPosting, string)) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:     uuid.NewString(),
		Direction: direction,
		SubjectID: subjectID,
		PoolSize:  n,
		Matches:   []Match{},
		Filtered:  []Filtered{},
		Failures:  []Failure{},
	}
	logger := r.logger.With(zap.String("run_id", result.RunID), zap.String("direction", direction))

	outcomes := make([]outcome, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			c, j, id := pairAt(i)
			outcomes[i] = r.evaluate(gctx, c, j, id, opts.UseHardFilter)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var scored []outcome
	for _, o := range outcomes {
		switch {
		case o.failure != nil:
			result.Failures = append(result.Failures, *o.failure)
			r.metrics.PairFailed(o.failure.Kind)
			logger.Warn("pair excluded", zap.String("id", o.failure.ID), zap.String("kind", o.failure.Kind), zap.String("error", o.failure.Error))
		case o.filtered != nil:
			result.Filtered = append(result.Filtered, *o.filtered)
			r.metrics.PairFiltered(o.filtered.Reason)
			logger.Debug("pair filtered", zap.String("id", o.filtered.ID), zap.String("reason", o.filtered.Reason))
		case o.match != nil:
			scored = append(scored, o)
			r.metrics.PairScored(direction)
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].match.Score > scored[b].match.Score
	})
	if opts.TopK > 0 && len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}

	for i, o := range scored {
		m := *o.match
		m.Rank = i + 1
		if opts.Explain {
			m.Explanation = r.explainer.FromFeatures(o.pair.Candidate, o.pair.Job, o.pair.Features, o.pair.Layers)
		}
		result.Matches = append(result.Matches, m)
	}

	elapsed := time.Since(start)
	r.metrics.ObserveRank(direction, elapsed)
	logger.Info("ranking complete",
		zap.String("subject_id", subjectID),
		zap.Int("pool_size", n),
		zap.Int("filtered", len(result.Filtered)),
		zap.Int("failed", len(result.Failures)),
		zap.Int("returned", len(result.Matches)),
		zap.Duration("elapsed", elapsed))
	return result, nil
}

// evaluate filters, extracts and scores one pair
func (r *Ranker) evaluate(ctx context.Context, c *types.Candidate, j *types.JobPosting, id string, useFilter bool) outcome {
	v, err := r.extractor.EligibilityFeatures(ctx, c, j)
	if err != nil {
		return outcome{failure: newFailure(id, err)}
	}
	if useFilter {
		if d := filter.Decide(v, j); d.Filtered {
			return outcome{filtered: &Filtered{ID: id, Reason: d.Reason}}
		}
	}

	match, err := r.extractor.MatchFeatures(ctx, c, j)
	if err != nil {
		return outcome{failure: newFailure(id, err)}
	}
	v.Merge(match)

	p := &Pair{Candidate: c, Job: j, Features: v, Layers: scoring.Score(v, r.scoring.SelectWeights(j))}
	score, err := r.scorer.Score(ctx, p)
	if err != nil {
		return outcome{failure: newFailure(id, err)}
	}

	return outcome{
		pair: p,
		match: &Match{
			ID:            id,
			Score:         score,
			Layers:        p.Layers,
			MatchedSkills: r.extractor.MatchedSkills(c, j),
		},
	}
}

func newFailure(id string, err error) *Failure {
	kind := KindExternalService
	var malformed *features.MalformedInputError
	if errors.As(err, &malformed) {
		kind = KindMalformedInput
	}
	return &Failure{ID: id, Kind: kind, Error: err.Error()}
}
