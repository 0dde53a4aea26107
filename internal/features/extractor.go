// Package features turns a (candidate, job) pair into a flat named feature vector.
package features

import (
	"context"
	"time"

	"github.com/jonathan/talent-matcher/internal/criteria"
	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/geo"
	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Extractor computes feature vectors. It holds no per-call state and is safe
// for concurrent use when its embedder and evaluator are.
type Extractor struct {
	mapper    *parsing.TaxonomyMapper
	resolver  *geo.Resolver
	embedder  embedding.Embedder
	evaluator criteria.Evaluator
	now       func() time.Time
}

// Option configures an Extractor
type Option func(*Extractor)

// WithEvaluator sets the critical-requirement evaluator (default criteria.PassAll)
func WithEvaluator(e criteria.Evaluator) Option {
	return func(x *Extractor) {
		if e != nil {
			x.evaluator = e
		}
	}
}

// WithResolver sets the location resolver (default: built from the mapper's tables)
func WithResolver(r *geo.Resolver) Option {
	return func(x *Extractor) {
		if r != nil {
			x.resolver = r
		}
	}
}

// WithClock fixes "now" for open-ended experience records
func WithClock(now func() time.Time) Option {
	return func(x *Extractor) {
		if now != nil {
			x.now = now
		}
	}
}

// NewExtractor creates an extractor. A nil mapper uses the default vocabularies;
// a nil embedder uses a HashEmbedder of the default dimension.
func NewExtractor(mapper *parsing.TaxonomyMapper, embedder embedding.Embedder, opts ...Option) *Extractor {
	if mapper == nil {
		mapper = parsing.NewTaxonomyMapper(nil)
	}
	if embedder == nil {
		embedder = embedding.NewHashEmbedder(embedding.DefaultDimension)
	}
	x := &Extractor{
		mapper:    mapper,
		resolver:  geo.NewResolver(mapper.Tables()),
		embedder:  embedder,
		evaluator: criteria.PassAll{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Mapper returns the taxonomy mapper
func (x *Extractor) Mapper() *parsing.TaxonomyMapper {
	return x.mapper
}

// Embedder returns the embedder
func (x *Extractor) Embedder() embedding.Embedder {
	return x.embedder
}

// ExtractAll runs every sub-extraction and merges the results
func (x *Extractor) ExtractAll(ctx context.Context, c *types.Candidate, j *types.JobPosting) (Vector, error) {
	v, err := x.EligibilityFeatures(ctx, c, j)
	if err != nil {
		return nil, err
	}
	match, err := x.MatchFeatures(ctx, c, j)
	if err != nil {
		return nil, err
	}
	v.Merge(match)
	return v, nil
}

// EligibilityFeatures computes the mandatory criteria, language and location
// groups the hard filter reads. It makes no embedding calls.
func (x *Extractor) EligibilityFeatures(ctx context.Context, c *types.Candidate, j *types.JobPosting) (Vector, error) {
	v, err := x.MandatoryCriteria(ctx, c, j)
	if err != nil {
		return nil, err
	}
	v.Merge(x.Language(c, j))
	v.Merge(x.Location(c, j))
	return v, nil
}

// MatchFeatures computes the education, experience, skill and global similarity groups
func (x *Extractor) MatchFeatures(ctx context.Context, c *types.Candidate, j *types.JobPosting) (Vector, error) {
	v := x.Education(c, j)

	exp, err := x.Experience(ctx, c, j)
	if err != nil {
		return nil, err
	}
	v.Merge(exp)

	skills, err := x.Skills(ctx, c, j)
	if err != nil {
		return nil, err
	}
	v.Merge(skills)

	global, err := x.GlobalSimilarity(ctx, c, j)
	if err != nil {
		return nil, err
	}
	v.Merge(global)

	return v, nil
}
