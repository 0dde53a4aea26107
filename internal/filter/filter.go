// Package filter decides whether a candidate-job pair is eligible for ranking at all.
package filter

import (
	"context"

	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Reasons returned by the hard filter, in check order
const (
	ReasonMandatoryCriteria = "Failed mandatory criteria"
	ReasonMandatoryLanguage = "Mandatory languages not satisfied"
	ReasonLocation          = "Location mismatch and candidate not willing to relocate"
	ReasonPassed            = "passed"
)

// Decision is the outcome of the hard filter for one pair
type Decision struct {
	Filtered bool   `json:"filtered"`
	Reason   string `json:"reason"`
}

// HardFilter gates pairs on mandatory criteria, mandatory languages and location
type HardFilter struct {
	extractor *features.Extractor
}

// New creates a hard filter over extractor
func New(extractor *features.Extractor) *HardFilter {
	return &HardFilter{extractor: extractor}
}

// ShouldFilterOut runs the checks in fixed priority order; the first failure wins.
// Only the eligibility features are computed.
func (f *HardFilter) ShouldFilterOut(ctx context.Context, c *types.Candidate, j *types.JobPosting) (Decision, error) {
	v, err := f.extractor.EligibilityFeatures(ctx, c, j)
	if err != nil {
		return Decision{}, err
	}
	return Decide(v, j), nil
}

// Decide applies the checks to an already extracted vector
func Decide(v features.Vector, j *types.JobPosting) Decision {
	switch {
	case !v.Flag(features.KeyMandatoryCriteriaAllPass):
		return Decision{Filtered: true, Reason: ReasonMandatoryCriteria}
	case !v.Flag(features.KeyAllMandatoryLanguagesOK):
		return Decision{Filtered: true, Reason: ReasonMandatoryLanguage}
	case !j.IsOnline() && !v.Flag(features.KeyLocationMatch):
		return Decision{Filtered: true, Reason: ReasonLocation}
	}
	return Decision{Reason: ReasonPassed}
}
