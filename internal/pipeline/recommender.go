// Package pipeline wires the matching components into a Recommender from configuration.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/jonathan/talent-matcher/internal/criteria"
	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/explain"
	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/filter"
	"github.com/jonathan/talent-matcher/internal/llm"
	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/jonathan/talent-matcher/internal/resilience"
	"github.com/jonathan/talent-matcher/internal/scoring"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/jonathan/talent-matcher/internal/vocab"
)

// ErrNoLLM is returned by operations that need an LLM client when none is configured
var ErrNoLLM = errors.New("no LLM client configured: set gemini_api_key")

// Options inject collaborators; zero values are built from the config
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// LLM replaces the Gemini client built from gemini_api_key
	LLM llm.Client
	// Model replaces the HTTP model server of the learned scorer
	Model ranking.Model
}

// Recommender ranks candidates for jobs and jobs for candidates
type Recommender struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *metrics.Metrics
	llm       llm.Client
	extractor *features.Extractor
	filter    *filter.HardFilter
	scoring   *scoring.Engine
	explainer *explain.Engine
	ranker    *ranking.Ranker
	closers   []func() error
}

// New builds every component named by cfg. Close releases the clients it opened.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Recommender, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := &Recommender{cfg: cfg, logger: opts.Logger, metrics: opts.Metrics, llm: opts.LLM}

	tables := vocab.Default()
	if cfg.VocabFile != "" {
		loaded, err := vocab.LoadFile(cfg.VocabFile)
		if err != nil {
			return nil, fmt.Errorf("loading vocabulary: %w", err)
		}
		tables = loaded
	}
	mapper := parsing.NewTaxonomyMapper(tables)

	if r.llm == nil && cfg.GeminiAPIKey != "" {
		llmCfg := llm.Config{
			LiteModel:      cfg.LLM.LiteModel,
			StandardModel:  cfg.LLM.StandardModel,
			EmbeddingModel: cfg.Embedding.Model,
			Temperature:    cfg.LLM.Temperature,
		}
		client, err := llm.NewClient(ctx, llmCfg, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("creating LLM client: %w", err)
		}
		r.llm = client
		r.closers = append(r.closers, client.Close)
	}

	embedder, err := r.buildEmbedder(ctx)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	evaluator, err := r.buildEvaluator()
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	r.extractor = features.NewExtractor(mapper, embedder, features.WithEvaluator(evaluator))
	r.filter = filter.New(r.extractor)
	r.scoring = scoring.NewEngine(r.extractor)
	r.explainer = explain.NewEngine(r.extractor, r.scoring)
	r.ranker = ranking.NewRanker(r.extractor, r.buildScorer(embedder, opts.Model), ranking.Config{
		Workers: cfg.Ranking.Workers,
		Metrics: r.metrics,
		Logger:  r.logger,
	})

	r.logger.Debug("recommender ready",
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_cache", cfg.Embedding.Cache),
		zap.String("scorer", cfg.Ranking.Scorer),
		zap.Bool("criteria_cel", cfg.Criteria.CEL),
		zap.Bool("criteria_llm", cfg.Criteria.LLM))
	return r, nil
}

func (r *Recommender) retry(attempts int) resilience.RetryConfig {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = attempts
	retry.Logger = r.logger
	return retry
}

// sharedEmbedTimeout covers every retry attempt of one gated encoder call
func (r *Recommender) sharedEmbedTimeout() time.Duration {
	ec := r.cfg.Embedding
	return ec.Timeout * time.Duration(max(ec.RetryAttempts, 1)+1)
}

// buildEmbedder layers encoder, concurrency gate and cache
func (r *Recommender) buildEmbedder(ctx context.Context) (embedding.Embedder, error) {
	ec := r.cfg.Embedding

	var base embedding.Embedder
	switch ec.Provider {
	case config.ProviderGemini:
		if r.llm == nil {
			return nil, fmt.Errorf("gemini embeddings: %w", ErrNoLLM)
		}
		gemini := embedding.NewGeminiEmbedder(r.llm, ec.Dimension, r.metrics)
		base = embedding.NewGatedEmbedder(gemini, ec.Concurrency, ec.Timeout, r.retry(ec.RetryAttempts))
	default:
		base = embedding.NewHashEmbedder(ec.Dimension)
	}

	namespace := fmt.Sprintf("%s:%s:%d", ec.Provider, ec.Model, ec.Dimension)
	switch ec.Cache {
	case config.CacheMemory:
		return embedding.NewCachedEmbedder(base, embedding.NewMemoryCache(ec.CacheSize), namespace, r.sharedEmbedTimeout(), r.metrics, r.logger), nil
	case config.CacheRedis:
		cache, err := embedding.NewRedisCache(ctx, embedding.RedisConfig{
			Addr:     r.cfg.Redis.Addr,
			Password: r.cfg.Redis.Password,
			DB:       r.cfg.Redis.DB,
			PoolSize: r.cfg.Redis.PoolSize,
			TTL:      ec.CacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding cache: %w", err)
		}
		r.closers = append(r.closers, cache.Close)
		return embedding.NewCachedEmbedder(base, cache, namespace, r.sharedEmbedTimeout(), r.metrics, r.logger), nil
	default:
		return base, nil
	}
}

// buildEvaluator chains the enabled criteria evaluators, falling back to pass-all
func (r *Recommender) buildEvaluator() (criteria.Evaluator, error) {
	var chain []criteria.Evaluator
	if r.cfg.Criteria.CEL {
		cel, err := criteria.NewCELEvaluator()
		if err != nil {
			return nil, fmt.Errorf("creating CEL evaluator: %w", err)
		}
		chain = append(chain, cel)
	}
	if r.cfg.Criteria.LLM {
		if r.llm == nil {
			return nil, fmt.Errorf("LLM criteria: %w", ErrNoLLM)
		}
		chain = append(chain, criteria.NewLLMEvaluator(r.llm, r.cfg.Criteria.Timeout, r.retry(3), r.logger))
	}
	chain = append(chain, criteria.PassAll{})
	return criteria.NewChain(chain...), nil
}

// buildScorer returns nil for interpretable ranking
func (r *Recommender) buildScorer(embedder embedding.Embedder, model ranking.Model) ranking.PairScorer {
	sc := r.cfg.Scorer
	if r.cfg.Ranking.Scorer != config.ScorerLearned {
		return nil
	}
	if model == nil {
		model = ranking.NewHTTPScorer(sc.Endpoint, sc.Timeout)
	}
	return ranking.NewLearnedScorer(model, embedder, ranking.LearnedScorerConfig{
		FeatureWidth:   sc.FeatureWidth,
		EmbeddingWidth: sc.EmbeddingWidth,
		Timeout:        sc.Timeout,
		Retry:          r.retry(sc.RetryAttempts),
	})
}

// DefaultOptions returns the ranking options from the config
func (r *Recommender) DefaultOptions() ranking.Options {
	return ranking.Options{
		TopK:          r.cfg.Ranking.TopK,
		UseHardFilter: r.cfg.Ranking.UseHardFilter,
		Explain:       r.cfg.Ranking.Explain,
	}
}

// RankCandidates ranks a candidate pool for job
func (r *Recommender) RankCandidates(ctx context.Context, job *types.JobPosting, candidates []types.Candidate, opts ranking.Options) (*ranking.Result, error) {
	return r.ranker.RankCandidates(ctx, job, candidates, opts)
}

// RankJobs ranks a job pool for candidate
func (r *Recommender) RankJobs(ctx context.Context, candidate *types.Candidate, jobs []types.JobPosting, opts ranking.Options) (*ranking.Result, error) {
	return r.ranker.RankJobs(ctx, candidate, jobs, opts)
}

// Explain produces the structured explanation for one pair
func (r *Recommender) Explain(ctx context.Context, c *types.Candidate, j *types.JobPosting) (*explain.Explanation, error) {
	return r.explainer.Generate(ctx, c, j)
}

// Features extracts the full feature vector for one pair
func (r *Recommender) Features(ctx context.Context, c *types.Candidate, j *types.JobPosting) (features.Vector, error) {
	return r.extractor.ExtractAll(ctx, c, j)
}

// Filter runs the hard filter for one pair
func (r *Recommender) Filter(ctx context.Context, c *types.Candidate, j *types.JobPosting) (filter.Decision, error) {
	return r.filter.ShouldFilterOut(ctx, c, j)
}

// Score computes the interpretable score for one pair
func (r *Recommender) Score(ctx context.Context, c *types.Candidate, j *types.JobPosting) (float64, scoring.LayerScores, error) {
	return r.scoring.ComputeAggregatedScore(ctx, c, j)
}

// ParseJob extracts a job posting from free text with the LLM
func (r *Recommender) ParseJob(ctx context.Context, id, raw string) (*types.JobPosting, error) {
	if r.llm == nil {
		return nil, ErrNoLLM
	}
	return parsing.ParseJobPosting(ctx, r.llm, id, raw)
}

// Metrics returns the metrics sink, possibly nil
func (r *Recommender) Metrics() *metrics.Metrics {
	return r.metrics
}

// Close releases clients opened by New
func (r *Recommender) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
