package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEducationScore(t *testing.T) {
	tests := []struct {
		name     string
		has      float64
		field    float64
		expected float64
	}{
		{name: "below required degree", has: 0, field: 1, expected: 0},
		{name: "no field match", has: 1, field: 0, expected: 0.7},
		{name: "moderate field match", has: 1, field: 0.6, expected: 0.9},
		{name: "strong field match", has: 1, field: 1, expected: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := features.Vector{features.KeyHasRequiredDegreeLevel: tt.has, features.KeyFieldMatchScore: tt.field}
			assert.InDelta(t, tt.expected, EducationScore(v), 1e-9)
		})
	}
}

func TestExperienceScore(t *testing.T) {
	v := features.Vector{
		features.KeyRequiredYearsExperience:         5,
		features.KeyTotalYearsExperience:            2.5,
		features.KeyYearsExperienceInRequiredTitles: 10,
		features.KeyTitleSimilarityScore:            0,
	}
	assert.InDelta(t, 0.4*0.5+0.3*1+0.3*0.5, ExperienceScore(v), 1e-9)

	v = features.Vector{features.KeyRequiredYearsExperience: 0, features.KeyTitleSimilarityScore: -1}
	assert.InDelta(t, 0.7, ExperienceScore(v), 1e-9, "zero required years counts as fully met")
}

func TestLanguageScore(t *testing.T) {
	unmet := features.Vector{features.KeyAllMandatoryLanguagesOK: 0, features.KeyMandatoryLanguageCoverageRatio: 1}
	assert.Equal(t, 0.0, LanguageScore(unmet))

	met := features.Vector{
		features.KeyAllMandatoryLanguagesOK:        1,
		features.KeyMandatoryLanguageCoverageRatio: 1,
		features.KeyPreferredLanguageCoverageRatio: 0.5,
	}
	assert.InDelta(t, 0.85, LanguageScore(met), 1e-9)
}

func TestSkillScore(t *testing.T) {
	gated := features.Vector{
		features.KeyMandatorySkillCoverageRatio: 0.49,
		features.KeyWeightedSkillMatchScore:     0.49,
		features.KeySkillOverlapRatio:           1,
	}
	assert.Equal(t, 0.0, SkillScore(gated))

	open := features.Vector{
		features.KeyMandatorySkillCoverageRatio: 0.75,
		features.KeyWeightedSkillMatchScore:     0.75,
		features.KeySkillOverlapRatio:           0.5,
	}
	assert.InDelta(t, 0.6*0.5+0.4*0.75, SkillScore(open), 1e-9)
}

func TestScore_WeightsAndBounds(t *testing.T) {
	assert.InDelta(t, 1.0, ResearchWeights.Education+ResearchWeights.Experience+ResearchWeights.Language+ResearchWeights.Skill, 1e-9)
	assert.InDelta(t, 1.0, DefaultWeights.Education+DefaultWeights.Experience+DefaultWeights.Language+DefaultWeights.Skill, 1e-9)

	perfect := features.Vector{
		features.KeyHasRequiredDegreeLevel:          1,
		features.KeyFieldMatchScore:                 1,
		features.KeyTitleSimilarityScore:            1,
		features.KeyAllMandatoryLanguagesOK:         1,
		features.KeyMandatoryLanguageCoverageRatio:  1,
		features.KeyPreferredLanguageCoverageRatio:  1,
		features.KeyMandatorySkillCoverageRatio:     1,
		features.KeyWeightedSkillMatchScore:         1,
		features.KeySkillOverlapRatio:               1,
		features.KeyYearsExperienceInRequiredTitles: 99,
		features.KeyTotalYearsExperience:            99,
		features.KeyRequiredYearsExperience:         5,
	}
	s := Score(perfect, DefaultWeights)
	assert.InDelta(t, 1.0, s.Base, 1e-9)
	assert.Equal(t, DefaultWeights, s.Weights)

	s = Score(features.Vector{features.KeyTitleSimilarityScore: -1, features.KeyRequiredYearsExperience: 5}, ResearchWeights)
	assert.Equal(t, 0.0, s.Base)
}

func TestEngine_ComputeAggregatedScore(t *testing.T) {
	x := features.NewExtractor(nil, embedding.NewHashEmbedder(32),
		features.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }))
	e := NewEngine(x)
	start := types.NewDate(2019, 1, 1)
	c := &types.Candidate{
		ID:         "c1",
		Education:  []types.EducationRecord{{Level: "Bachelor"}},
		Experience: []types.ExperienceRecord{{Title: "Research Scientist", StartDate: &start, IsCurrent: true}},
		Skills:     []types.SkillClaim{{Name: "Python"}},
	}
	j := &types.JobPosting{
		ID:           "j1",
		Title:        "Research Scientist",
		PresenceMode: types.PresenceOnline,
		Education:    types.EducationRequirement{Level: "PhD"},
		Skills:       []types.SkillRequirement{{Name: "Python"}},
	}

	base, layers, err := e.ComputeAggregatedScore(context.Background(), c, j)
	require.NoError(t, err)
	assert.Equal(t, ResearchWeights, layers.Weights)
	assert.Equal(t, 0.0, layers.Education, "below required degree")
	assert.Equal(t, layers.Base, base)
	assert.GreaterOrEqual(t, base, 0.0)
	assert.LessOrEqual(t, base, 1.0)

	j.Title = "Backend Engineer"
	assert.Equal(t, DefaultWeights, e.SelectWeights(j))
}
