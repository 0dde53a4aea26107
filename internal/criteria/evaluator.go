// Package criteria evaluates a job's critical requirements against a candidate.
package criteria

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/types"
)

// ErrNotApplicable is returned by an evaluator that cannot judge a requirement,
// letting the next evaluator in a Chain try.
var ErrNotApplicable = errors.New("requirement not applicable to evaluator")

// Evaluator decides whether a candidate satisfies one critical requirement
type Evaluator interface {
	Evaluate(ctx context.Context, p *Profile, req types.CriticalRequirement) (bool, error)
}

// EvaluationError reports an evaluator that failed to reach a verdict
type EvaluationError struct {
	RequirementID string
	Cause         error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate requirement %s: %v", e.RequirementID, e.Cause)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// Profile is the candidate view evaluators reason over
type Profile struct {
	CandidateID        string         `json:"candidate_id"`
	YearsExperience    float64        `json:"years_experience"`
	HighestDegreeLevel int            `json:"highest_degree_level"`
	Languages          map[string]int `json:"languages"`
	Skills             []string       `json:"skills"`
	WillingToRelocate  bool           `json:"willing_to_relocate"`
	City               string         `json:"city"`
	Country            string         `json:"country"`
	Titles             []string       `json:"titles,omitempty"`
}

// NewProfile summarizes c. Language names are lowercased and keep the best
// ordinal claimed; skills are canonical identifiers.
func NewProfile(c *types.Candidate, mapper *parsing.TaxonomyMapper, yearsExperience float64) *Profile {
	p := &Profile{
		CandidateID:       c.ID,
		YearsExperience:   yearsExperience,
		Languages:         make(map[string]int, len(c.Languages)),
		Skills:            make([]string, 0, len(c.Skills)),
		WillingToRelocate: c.WillingToRelocate,
		City:              c.Location.City,
		Country:           c.Location.Country,
	}
	for _, edu := range c.Education {
		p.HighestDegreeLevel = max(p.HighestDegreeLevel, mapper.HighestDegreeLevel(edu.Level))
	}
	for _, l := range c.Languages {
		name := strings.ToLower(strings.TrimSpace(l.Language))
		p.Languages[name] = max(p.Languages[name], parsing.LanguageOrdinal(l.Level))
	}
	for _, s := range c.Skills {
		if id := mapper.MapSkill(s.Name); id != "" {
			p.Skills = append(p.Skills, id)
		}
	}
	for _, exp := range c.Experience {
		if exp.Title != "" {
			p.Titles = append(p.Titles, exp.Title)
		}
	}
	return p
}

// PassAll marks every requirement as passed
type PassAll struct{}

// Evaluate always returns true
func (PassAll) Evaluate(_ context.Context, _ *Profile, _ types.CriticalRequirement) (bool, error) {
	return true, nil
}

// Chain tries evaluators in order until one returns something other than ErrNotApplicable
type Chain []Evaluator

// NewChain builds a chain, skipping nil evaluators
func NewChain(evaluators ...Evaluator) Chain {
	chain := make(Chain, 0, len(evaluators))
	for _, e := range evaluators {
		if e != nil {
			chain = append(chain, e)
		}
	}
	return chain
}

// Evaluate returns the first applicable verdict, or ErrNotApplicable if none applies
func (c Chain) Evaluate(ctx context.Context, p *Profile, req types.CriticalRequirement) (bool, error) {
	for _, e := range c {
		passed, err := e.Evaluate(ctx, p, req)
		if errors.Is(err, ErrNotApplicable) {
			continue
		}
		return passed, err
	}
	return false, ErrNotApplicable
}
