package embedding

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/talent-matcher/internal/llm"
)

// countingEmbedder wraps HashEmbedder and records calls
type countingEmbedder struct {
	inner      *HashEmbedder
	calls      atomic.Int64
	batchCalls atomic.Int64
	delay      time.Duration
	failTimes  atomic.Int64
	inFlight   atomic.Int64
	maxFlight  atomic.Int64
	mu         sync.Mutex
	batchSizes []int
}

func newCountingEmbedder(dim int) *countingEmbedder {
	return &countingEmbedder{inner: NewHashEmbedder(dim)}
}

func (c *countingEmbedder) Dimension() int { return c.inner.Dimension() }

func (c *countingEmbedder) enter() func() {
	n := c.inFlight.Add(1)
	for {
		m := c.maxFlight.Load()
		if n <= m || c.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	return func() { c.inFlight.Add(-1) }
}

func (c *countingEmbedder) Encode(ctx context.Context, text string) ([]float64, error) {
	defer c.enter()()
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.failTimes.Load() > 0 {
		c.failTimes.Add(-1)
		return nil, context.DeadlineExceeded
	}
	return c.inner.Encode(ctx, text)
}

func (c *countingEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float64, error) {
	c.batchCalls.Add(1)
	c.mu.Lock()
	c.batchSizes = append(c.batchSizes, len(texts))
	c.mu.Unlock()
	return c.inner.EncodeBatch(ctx, texts)
}

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockLLMClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return "{}", nil
}

func (m *MockLLMClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}

func (m *MockLLMClient) GetModel(_ llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }
