package filter

import (
	"context"
	"testing"
	"time"

	"github.com/jonathan/talent-matcher/internal/criteria"
	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilter(t *testing.T) *HardFilter {
	t.Helper()
	cel, err := criteria.NewCELEvaluator()
	require.NoError(t, err)
	x := features.NewExtractor(nil, embedding.NewHashEmbedder(32),
		features.WithEvaluator(criteria.NewChain(cel, criteria.PassAll{})),
		features.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }))
	return New(x)
}

func candidate() *types.Candidate {
	start := types.NewDate(2020, 1, 1)
	return &types.Candidate{
		ID:         "c1",
		Location:   types.Location{City: "Paris", Country: "France"},
		Experience: []types.ExperienceRecord{{Title: "Engineer", StartDate: &start, IsCurrent: true}},
		Languages:  []types.LanguageClaim{{Language: "English", Level: "B2"}},
	}
}

func job() *types.JobPosting {
	return &types.JobPosting{
		ID:           "j1",
		Title:        "Engineer",
		Location:     types.Location{City: "Paris", Country: "France"},
		PresenceMode: types.PresenceOnsite,
	}
}

func TestShouldFilterOut(t *testing.T) {
	f := newTestFilter(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		mutate   func(c *types.Candidate, j *types.JobPosting)
		filtered bool
		reason   string
	}{
		{
			name:   "passes",
			mutate: func(_ *types.Candidate, _ *types.JobPosting) {},
			reason: ReasonPassed,
		},
		{
			name: "criteria wins over language",
			mutate: func(_ *types.Candidate, j *types.JobPosting) {
				j.CriticalRequirements = []types.CriticalRequirement{{ID: "cr1", Requirement: "candidate.years_experience >= 10"}}
				j.Languages = []types.LanguageRequirement{{Language: "English", Level: "C1", Criticality: 1}}
			},
			filtered: true,
			reason:   ReasonMandatoryCriteria,
		},
		{
			name: "language",
			mutate: func(_ *types.Candidate, j *types.JobPosting) {
				j.Languages = []types.LanguageRequirement{{Language: "English", Level: "C1", Criticality: 1}}
				j.Location = types.Location{City: "Tokyo", Country: "Japan"}
			},
			filtered: true,
			reason:   ReasonMandatoryLanguage,
		},
		{
			name: "preferred language never filters",
			mutate: func(_ *types.Candidate, j *types.JobPosting) {
				j.Languages = []types.LanguageRequirement{{Language: "German", Level: "C2"}}
			},
			reason: ReasonPassed,
		},
		{
			name: "location",
			mutate: func(_ *types.Candidate, j *types.JobPosting) {
				j.Location = types.Location{City: "Tokyo", Country: "Japan"}
			},
			filtered: true,
			reason:   ReasonLocation,
		},
		{
			name: "relocation",
			mutate: func(c *types.Candidate, j *types.JobPosting) {
				j.Location = types.Location{City: "Tokyo", Country: "Japan"}
				c.WillingToRelocate = true
			},
			reason: ReasonPassed,
		},
		{
			name: "online skips location",
			mutate: func(_ *types.Candidate, j *types.JobPosting) {
				j.Location = types.Location{City: "Tokyo", Country: "Japan"}
				j.PresenceMode = types.PresenceOnline
			},
			reason: ReasonPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, j := candidate(), job()
			tt.mutate(c, j)
			d, err := f.ShouldFilterOut(ctx, c, j)
			require.NoError(t, err)
			assert.Equal(t, tt.filtered, d.Filtered)
			assert.Equal(t, tt.reason, d.Reason)

			again, err := f.ShouldFilterOut(ctx, c, j)
			require.NoError(t, err)
			assert.Equal(t, d, again)
		})
	}
}

func TestShouldFilterOut_MalformedInput(t *testing.T) {
	f := newTestFilter(t)
	c, j := candidate(), job()
	c.Experience[0].StartDate = nil
	j.CriticalRequirements = []types.CriticalRequirement{{ID: "cr1", Requirement: "true"}}

	_, err := f.ShouldFilterOut(context.Background(), c, j)
	var malformed *features.MalformedInputError
	assert.ErrorAs(t, err, &malformed)
}

func TestDecide_HybridNeedsLocation(t *testing.T) {
	v := features.Vector{
		features.KeyMandatoryCriteriaAllPass: 1,
		features.KeyAllMandatoryLanguagesOK:  1,
		features.KeyLocationMatch:            0,
	}
	j := job()
	j.PresenceMode = types.PresenceHybrid
	assert.Equal(t, Decision{Filtered: true, Reason: ReasonLocation}, Decide(v, j))
}
