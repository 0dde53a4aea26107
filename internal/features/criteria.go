package features

import (
	"context"
	"errors"

	"github.com/jonathan/talent-matcher/internal/criteria"
	"github.com/jonathan/talent-matcher/internal/types"
)

// MandatoryCriteria evaluates each critical requirement. A requirement no
// evaluator applies to counts as passed. Zero requirements pass trivially.
func (x *Extractor) MandatoryCriteria(ctx context.Context, c *types.Candidate, j *types.JobPosting) (Vector, error) {
	total := len(j.CriticalRequirements)
	passed := 0
	if total > 0 {
		years, err := x.TotalYears(c)
		if err != nil {
			return nil, err
		}
		profile := criteria.NewProfile(c, x.mapper, years)
		for _, req := range j.CriticalRequirements {
			ok, err := x.evaluator.Evaluate(ctx, profile, req)
			if errors.Is(err, criteria.ErrNotApplicable) {
				ok, err = true, nil
			}
			if err != nil {
				return nil, err
			}
			if ok {
				passed++
			}
		}
	}

	return Vector{
		KeyNumMandatoryCriteriaPassed: float64(passed),
		KeyMandatoryCriteriaTotal:     float64(total),
		KeyMandatoryCriteriaPassRatio: ratio(float64(passed), float64(total), 1),
		KeyMandatoryCriteriaAllPass:   flag(passed == total),
	}, nil
}
