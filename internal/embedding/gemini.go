package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/talent-matcher/internal/llm"
	"github.com/jonathan/talent-matcher/internal/metrics"
)

// GeminiEmbedder embeds text through the LLM client's embedding model.
// Vectors are padded or truncated to the configured dimension.
type GeminiEmbedder struct {
	client  llm.Client
	dim     int
	metrics *metrics.Metrics
}

// NewGeminiEmbedder creates an embedder over client
func NewGeminiEmbedder(client llm.Client, dim int, m *metrics.Metrics) *GeminiEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &GeminiEmbedder{client: client, dim: dim, metrics: m}
}

// Dimension returns the vector width
func (g *GeminiEmbedder) Dimension() int {
	return g.dim
}

// Encode embeds one text
func (g *GeminiEmbedder) Encode(ctx context.Context, text string) ([]float64, error) {
	out, err := g.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EncodeBatch embeds texts in one backend call. Blank texts get zero vectors
// without reaching the backend.
func (g *GeminiEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	var pending []string
	var positions []int
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			out[i] = make([]float64, g.dim)
			continue
		}
		pending = append(pending, t)
		positions = append(positions, i)
	}
	if len(pending) == 0 {
		return out, nil
	}

	start := time.Now()
	vectors, err := g.client.Embed(ctx, pending)
	g.metrics.ObserveEmbedding(time.Since(start), err)
	if err != nil {
		return nil, &Error{Backend: "gemini", Cause: err}
	}
	if len(vectors) != len(pending) {
		return nil, &Error{Backend: "gemini", Cause: fmt.Errorf("expected %d vectors, got %d", len(pending), len(vectors))}
	}

	for j, pos := range positions {
		out[pos] = Fit32(vectors[j], g.dim)
	}
	return out, nil
}
