package embedding

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	v := []float64{1, 2}
	require.NoError(t, c.Set(ctx, "a", v))
	v[0] = 99

	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2}, got, "cache stores a copy")

	require.NoError(t, c.Set(ctx, "b", []float64{3}))
	require.NoError(t, c.Set(ctx, "c", []float64{4}))
	assert.Equal(t, 2, c.Len(), "bounded by max entries")
}

func TestVectorCodec(t *testing.T) {
	v := []float64{0.5, -1.25, 3e-9}
	decoded, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, decoded)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestCachedEmbedder_Encode(t *testing.T) {
	ctx := context.Background()
	inner := newCountingEmbedder(16)
	m := metrics.New(prometheus.NewRegistry())
	e := NewCachedEmbedder(inner, NewMemoryCache(0), "hash-16", 0, m, nil)

	first, err := e.Encode(ctx, "data scientist")
	require.NoError(t, err)
	second, err := e.Encode(ctx, "data scientist")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingCacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingCacheMisses))
	assert.Equal(t, 16, e.Dimension())
}

func TestCachedEmbedder_SingleflightDedup(t *testing.T) {
	ctx := context.Background()
	inner := newCountingEmbedder(8)
	inner.delay = 20 * time.Millisecond
	e := NewCachedEmbedder(inner, NewMemoryCache(0), "ns", 0, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Encode(ctx, "same text")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachedEmbedder_EncodeBatchOnlyMisses(t *testing.T) {
	ctx := context.Background()
	inner := newCountingEmbedder(8)
	e := NewCachedEmbedder(inner, NewMemoryCache(0), "ns", 0, nil, nil)

	_, err := e.Encode(ctx, "python")
	require.NoError(t, err)

	out, err := e.EncodeBatch(ctx, []string{"python", "sql", "java"})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, []int{2}, inner.batchSizes)

	out2, err := e.EncodeBatch(ctx, []string{"sql", "java"})
	require.NoError(t, err)
	assert.Equal(t, out[1:], out2)
	assert.Equal(t, int64(1), inner.batchCalls.Load(), "second batch fully cached")
}

func TestCachedEmbedder_RedisUnavailableDegrades(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	inner := newCountingEmbedder(8)
	e := NewCachedEmbedder(inner, NewRedisCacheFromClient(rdb, time.Minute, ""), "ns", 0, nil, nil)

	v, err := e.Encode(context.Background(), "golang")
	require.NoError(t, err)
	assert.Len(t, v, 8)
	assert.Equal(t, int64(1), inner.calls.Load())
}

// gateEmbedder blocks Encode until release is closed
type gateEmbedder struct {
	inner   *HashEmbedder
	started chan struct{}
	release chan struct{}
	once    sync.Once
	ctxErr  atomic.Value
}

func (g *gateEmbedder) Dimension() int { return g.inner.Dimension() }

func (g *gateEmbedder) Encode(ctx context.Context, text string) ([]float64, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	if err := ctx.Err(); err != nil {
		g.ctxErr.Store(err)
		return nil, err
	}
	return g.inner.Encode(ctx, text)
}

func (g *gateEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return g.inner.EncodeBatch(ctx, texts)
}

func TestCachedEmbedder_CancelledCallerDoesNotFailWaiters(t *testing.T) {
	inner := &gateEmbedder{inner: NewHashEmbedder(8), started: make(chan struct{}), release: make(chan struct{})}
	e := NewCachedEmbedder(inner, NewMemoryCache(0), "ns", time.Second, nil, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := e.Encode(firstCtx, "shared text")
		firstErr <- err
	}()
	<-inner.started

	type result struct {
		v   []float64
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := e.Encode(context.Background(), "shared text")
		second <- result{v, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(inner.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Len(t, got.v, 8)
	assert.Nil(t, inner.ctxErr.Load(), "backend call kept running after the first caller left")
}
