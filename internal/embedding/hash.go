package embedding

import (
	"context"

	"github.com/cespare/xxhash/v2"
	"github.com/jonathan/talent-matcher/internal/parsing"
)

// HashEmbedder is a deterministic feature-hashing embedder. Each token and
// adjacent token pair is hashed to a signed bucket; the result is L2-normalized.
// It needs no network and is the embedder of record in tests and offline runs.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hashing embedder of width dim (DefaultDimension if dim <= 0)
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &HashEmbedder{dim: dim}
}

// Dimension returns the vector width
func (h *HashEmbedder) Dimension() int {
	return h.dim
}

// Encode embeds one text
func (h *HashEmbedder) Encode(_ context.Context, text string) ([]float64, error) {
	v := make([]float64, h.dim)
	tokens := splitTokens(parsing.NormalizeText(text))
	for i, tok := range tokens {
		h.add(v, tok, 1.0)
		if i > 0 {
			h.add(v, tokens[i-1]+" "+tok, 0.5)
		}
	}
	Normalize(v)
	return v, nil
}

// EncodeBatch embeds each text in order
func (h *HashEmbedder) EncodeBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return encodeEach(ctx, texts, h.Encode)
}

func (h *HashEmbedder) add(v []float64, feature string, weight float64) {
	sum := xxhash.Sum64String(feature)
	idx := sum % uint64(h.dim)
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}

func splitTokens(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				tokens = append(tokens, s[start:i])
			}
			start = i + 1
		}
	}
	return tokens
}
