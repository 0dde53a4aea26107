package features

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Skills measures canonical skill overlap, weighted coverage and embedding similarity
func (x *Extractor) Skills(ctx context.Context, c *types.Candidate, j *types.JobPosting) (Vector, error) {
	have := x.candidateSkillSet(c)

	// overlap counts distinct canonical ids; weights stay per listed entry
	required := make(map[string]struct{}, len(j.Skills))
	totalWeight, matchedWeight := 0.0, 0.0
	for _, req := range j.Skills {
		id := x.mapper.MapSkill(req.Name)
		w := req.EffectiveWeight()
		totalWeight += w
		if _, ok := have[id]; ok {
			matchedWeight += w
		}
		if id != "" {
			required[id] = struct{}{}
		}
	}
	matched := 0
	for id := range required {
		if _, ok := have[id]; ok {
			matched++
		}
	}

	similarity, err := x.skillSimilarity(ctx, c, j)
	if err != nil {
		return nil, err
	}

	weighted := ratio(matchedWeight, totalWeight, 0)
	return Vector{
		KeyNumRequiredSkills:           float64(len(required)),
		KeySkillOverlapCount:           float64(matched),
		KeySkillOverlapRatio:           ratio(float64(matched), float64(len(required)), 0),
		KeyWeightedSkillMatchScore:     weighted,
		KeyMandatorySkillCoverageRatio: weighted,
		KeySkillEmbeddingSimilarity:    similarity,
	}, nil
}

// MatchedSkills returns the names of job skills the candidate has, in job order
func (x *Extractor) MatchedSkills(c *types.Candidate, j *types.JobPosting) []string {
	have := x.candidateSkillSet(c)
	var out []string
	for _, req := range j.Skills {
		if _, ok := have[x.mapper.MapSkill(req.Name)]; ok {
			out = append(out, req.Name)
		}
	}
	return out
}

func (x *Extractor) candidateSkillSet(c *types.Candidate) map[string]struct{} {
	set := make(map[string]struct{}, len(c.Skills))
	for _, s := range c.Skills {
		if id := x.mapper.MapSkill(s.Name); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// skillSimilarity compares the mean embedding of each side's skill names
func (x *Extractor) skillSimilarity(ctx context.Context, c *types.Candidate, j *types.JobPosting) (float64, error) {
	if len(c.Skills) == 0 || len(j.Skills) == 0 {
		return 0, nil
	}
	texts := make([]string, 0, len(c.Skills)+len(j.Skills))
	for _, s := range c.Skills {
		texts = append(texts, s.Name)
	}
	for _, s := range j.Skills {
		texts = append(texts, s.Name)
	}

	vectors, err := x.embedder.EncodeBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("skill similarity: %w", err)
	}
	split := len(c.Skills)
	return embedding.Cosine(embedding.Mean(vectors[:split]), embedding.Mean(vectors[split:])), nil
}
