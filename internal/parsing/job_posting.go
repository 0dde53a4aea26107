package parsing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/talent-matcher/internal/llm"
	"github.com/jonathan/talent-matcher/internal/prompts"
	"github.com/jonathan/talent-matcher/internal/types"
)

// ParseJobPosting extracts a structured JobPosting from raw posting text or HTML.
// id is assigned to the result; the LLM never invents identifiers.
func ParseJobPosting(ctx context.Context, client llm.Client, id, raw string) (*types.JobPosting, error) {
	if client == nil {
		return nil, &ExtractionError{Stage: StageGenerate, Message: "LLM client is required"}
	}

	text, err := StripHTML(raw)
	if err != nil {
		return nil, &ExtractionError{Stage: StageClean, Message: "failed to clean posting text", Cause: err}
	}
	if text == "" {
		return nil, &ExtractionError{Stage: StageClean, Field: "text", Message: "posting text is empty"}
	}

	prompt := prompts.Format(prompts.MustGet("parsing.json", "extract-job-posting"), map[string]string{
		"JobText": text,
	})

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &ExtractionError{Stage: StageGenerate, Message: "LLM call failed", Cause: err}
	}

	posting, err := parseJSONResponse(llm.CleanJSONBlock(responseText))
	if err != nil {
		return nil, err
	}

	posting.ID = id
	if err := postProcessPosting(posting); err != nil {
		return nil, err
	}

	return posting, nil
}

func parseJSONResponse(jsonText string) (*types.JobPosting, error) {
	var posting types.JobPosting
	if err := json.Unmarshal([]byte(jsonText), &posting); err != nil {
		return nil, &ExtractionError{Stage: StageDecode, Message: "response is not a job posting", Cause: err}
	}
	return &posting, nil
}

// postProcessPosting fills defaults the model tends to omit and validates the result
func postProcessPosting(p *types.JobPosting) error {
	p.PresenceMode = types.PresenceMode(strings.ToLower(strings.TrimSpace(string(p.PresenceMode))))
	switch p.PresenceMode {
	case types.PresenceOnline, types.PresenceOnsite, types.PresenceHybrid:
	default:
		p.PresenceMode = types.PresenceOnsite
	}

	for i := range p.Languages {
		if p.Languages[i].Criticality < 0 {
			p.Languages[i].Criticality = 0
		}
	}

	for i := range p.Skills {
		if w := p.Skills[i].Weight; w != nil && (*w < 0 || *w > 1) {
			clamped := min(max(*w, 0), 1)
			p.Skills[i].Weight = &clamped
		}
	}

	for i := range p.CriticalRequirements {
		if p.CriticalRequirements[i].ID == "" {
			p.CriticalRequirements[i].ID = fmt.Sprintf("cr%d", i+1)
		}
	}

	if err := p.Validate(); err != nil {
		return &ExtractionError{Stage: StageValidate, Field: "job_posting", Message: "extracted posting is invalid", Cause: err}
	}
	return nil
}
