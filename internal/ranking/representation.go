package ranking

import (
	"math"

	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/features"
)

// BuildRepresentation lays out feature values in ascending key order, padded
// or truncated on the right to featureWidth, followed by emb padded or
// truncated to embeddingWidth. Non-finite feature values become 0.
func BuildRepresentation(v features.Vector, emb []float64, featureWidth, embeddingWidth int) []float64 {
	out := make([]float64, featureWidth, featureWidth+embeddingWidth)
	for i, key := range v.Keys() {
		if i >= featureWidth {
			break
		}
		if x := v[key]; !math.IsInf(x, 0) && !math.IsNaN(x) {
			out[i] = x
		}
	}
	return append(out, embedding.Fit(emb, embeddingWidth)...)
}
