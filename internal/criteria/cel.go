package criteria

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
	"github.com/jonathan/talent-matcher/internal/types"
)

// CELEvaluator treats requirement text as a CEL boolean expression over
// `candidate` and `requirement`, for example:
//
//	candidate.years_experience >= 5 && "go" in candidate.skills
//	candidate.languages["english"] >= 5
//
// Text that does not compile is not applicable. Runtime errors and
// non-boolean results fail the requirement.
type CELEvaluator struct {
	env      *cel.Env
	programs sync.Map // requirement text -> *compiled
}

type compiled struct {
	prg cel.Program
	err error
}

// NewCELEvaluator creates the CEL environment
func NewCELEvaluator() (*CELEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("candidate", cel.DynType),
		cel.Variable("requirement", cel.DynType),
		cel.CrossTypeNumericComparisons(true),
		ext.Strings(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &CELEvaluator{env: env}, nil
}

// Evaluate runs the compiled requirement against p
func (e *CELEvaluator) Evaluate(_ context.Context, p *Profile, req types.CriticalRequirement) (bool, error) {
	expr := strings.TrimSpace(req.Requirement)
	if expr == "" {
		return false, ErrNotApplicable
	}

	c := e.compile(expr)
	if c.err != nil {
		return false, ErrNotApplicable
	}

	out, _, err := c.prg.Eval(map[string]any{
		"candidate":   p.activation(),
		"requirement": map[string]any{"id": req.ID, "degree": req.Degree},
	})
	if err != nil {
		return false, nil
	}
	passed, ok := out.Value().(bool)
	if !ok {
		return false, nil
	}
	return passed, nil
}

func (e *CELEvaluator) compile(expr string) *compiled {
	if v, ok := e.programs.Load(expr); ok {
		return v.(*compiled)
	}

	c := &compiled{}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		c.err = issues.Err()
	} else {
		c.prg, c.err = e.env.Program(ast)
	}

	v, _ := e.programs.LoadOrStore(expr, c)
	return v.(*compiled)
}

func (p *Profile) activation() map[string]any {
	languages := make(map[string]any, len(p.Languages))
	for name, ordinal := range p.Languages {
		languages[name] = int64(ordinal)
	}
	skills := make([]any, len(p.Skills))
	for i, s := range p.Skills {
		skills[i] = s
	}
	return map[string]any{
		"id":                   p.CandidateID,
		"years_experience":     p.YearsExperience,
		"highest_degree_level": int64(p.HighestDegreeLevel),
		"languages":            languages,
		"skills":               skills,
		"willing_to_relocate":  p.WillingToRelocate,
		"city":                 p.City,
		"country":              p.Country,
	}
}
