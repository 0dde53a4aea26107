package features

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/types"
)

// GlobalSimilarity compares the candidate's experience text with the job's descriptive text
func (x *Extractor) GlobalSimilarity(ctx context.Context, c *types.Candidate, j *types.JobPosting) (Vector, error) {
	candidateText, jobText := c.ExperienceText(), j.Text()
	if candidateText == "" || jobText == "" {
		return Vector{KeyGlobalTextSimilarity: 0}, nil
	}

	vectors, err := x.embedder.EncodeBatch(ctx, []string{candidateText, jobText})
	if err != nil {
		return nil, fmt.Errorf("global similarity: %w", err)
	}
	return Vector{KeyGlobalTextSimilarity: embedding.Cosine(vectors[0], vectors[1])}, nil
}
