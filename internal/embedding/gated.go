package embedding

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/talent-matcher/internal/resilience"
	"golang.org/x/sync/semaphore"
)

// GatedEmbedder bounds the number of in-flight backend calls and wraps each
// call in a timeout and bounded retry.
type GatedEmbedder struct {
	inner   Embedder
	sem     *semaphore.Weighted
	timeout time.Duration
	retry   resilience.RetryConfig
}

// NewGatedEmbedder allows at most concurrency simultaneous calls to inner
func NewGatedEmbedder(inner Embedder, concurrency int, timeout time.Duration, retry resilience.RetryConfig) *GatedEmbedder {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &GatedEmbedder{
		inner:   inner,
		sem:     semaphore.NewWeighted(int64(concurrency)),
		timeout: timeout,
		retry:   retry,
	}
}

// Dimension returns the inner embedder's width
func (g *GatedEmbedder) Dimension() int {
	return g.inner.Dimension()
}

// Encode embeds one text once a slot is free
func (g *GatedEmbedder) Encode(ctx context.Context, text string) ([]float64, error) {
	var (
		mu  sync.Mutex
		out []float64
	)
	err := g.do(ctx, "embedding.encode", func(ctx context.Context) error {
		v, err := g.inner.Encode(ctx, text)
		if err != nil {
			return err
		}
		mu.Lock()
		out = v
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	return out, nil
}

// EncodeBatch embeds texts as a single gated call
func (g *GatedEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float64, error) {
	var (
		mu  sync.Mutex
		out [][]float64
	)
	err := g.do(ctx, "embedding.encode_batch", func(ctx context.Context) error {
		v, err := g.inner.EncodeBatch(ctx, texts)
		if err != nil {
			return err
		}
		mu.Lock()
		out = v
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	return out, nil
}

func (g *GatedEmbedder) do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	err := resilience.Call(ctx, name, g.timeout, g.retry, fn)
	if err != nil {
		return &Error{Backend: name, Cause: err}
	}
	return nil
}
