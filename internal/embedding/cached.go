package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jonathan/talent-matcher/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultSharedTimeout bounds a backend call shared by concurrent Encode callers
const DefaultSharedTimeout = time.Minute

// CachedEmbedder serves repeated texts from a Cache. Concurrent requests for
// the same uncached text share one backend call, which outlives any single
// caller's cancellation. Cache failures degrade to misses.
type CachedEmbedder struct {
	inner     Embedder
	cache     Cache
	namespace string
	timeout   time.Duration
	group     singleflight.Group
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewCachedEmbedder wraps inner. namespace separates models sharing a cache.
// timeout bounds each shared backend call; zero means DefaultSharedTimeout.
func NewCachedEmbedder(inner Embedder, cache Cache, namespace string, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultSharedTimeout
	}
	return &CachedEmbedder{inner: inner, cache: cache, namespace: namespace, timeout: timeout, metrics: m, logger: logger}
}

// Dimension returns the inner embedder's width
func (c *CachedEmbedder) Dimension() int {
	return c.inner.Dimension()
}

// Encode embeds one text through the cache
func (c *CachedEmbedder) Encode(ctx context.Context, text string) ([]float64, error) {
	key := c.key(text)
	if v, ok := c.lookup(ctx, key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		v, err := c.inner.Encode(shared, text)
		if err != nil {
			return nil, err
		}
		c.store(shared, key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return Fit(res.Val.([]float64), c.Dimension()), nil
	}
}

// EncodeBatch embeds texts, sending only cache misses to the inner embedder in one batch
func (c *CachedEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	keys := make([]string, len(texts))
	var missTexts []string
	var missPos []int

	for i, t := range texts {
		keys[i] = c.key(t)
		if v, ok := c.lookup(ctx, keys[i]); ok {
			out[i] = v
			continue
		}
		missTexts = append(missTexts, t)
		missPos = append(missPos, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := c.inner.EncodeBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, pos := range missPos {
		out[pos] = vectors[j]
		c.store(ctx, keys[pos], vectors[j])
	}
	return out, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float64, bool) {
	v, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("embedding cache read failed", zap.Error(err))
	}
	if err != nil || !ok {
		c.metrics.CacheMiss()
		return nil, false
	}
	c.metrics.CacheHit()
	return v, true
}

func (c *CachedEmbedder) store(ctx context.Context, key string, v []float64) {
	if err := c.cache.Set(ctx, key, v); err != nil {
		c.logger.Warn("embedding cache write failed", zap.Error(err))
	}
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.namespace + ":" + hex.EncodeToString(sum[:])
}
