package criteria

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/talent-matcher/internal/llm"
	"github.com/jonathan/talent-matcher/internal/prompts"
	"github.com/jonathan/talent-matcher/internal/resilience"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
)

// LLMEvaluator asks the model whether the candidate profile meets a requirement
type LLMEvaluator struct {
	client  llm.Client
	timeout time.Duration
	retry   resilience.RetryConfig
	logger  *zap.Logger
}

type verdict struct {
	Passed *bool  `json:"passed"`
	Reason string `json:"reason"`
}

// NewLLMEvaluator creates an evaluator over client. Each call is bounded by timeout and retried per retry.
func NewLLMEvaluator(client llm.Client, timeout time.Duration, retry resilience.RetryConfig, logger *zap.Logger) *LLMEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	retry.Logger = logger
	return &LLMEvaluator{client: client, timeout: timeout, retry: retry, logger: logger}
}

// Evaluate returns the model's verdict
func (e *LLMEvaluator) Evaluate(ctx context.Context, p *Profile, req types.CriticalRequirement) (bool, error) {
	if e.client == nil {
		return false, ErrNotApplicable
	}

	profileJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return false, &EvaluationError{RequirementID: req.ID, Cause: err}
	}

	prompt, err := prompts.Render("criteria.json", "evaluate-critical-requirement", map[string]string{
		"RequirementID":    req.ID,
		"Requirement":      req.Requirement,
		"CandidateProfile": string(profileJSON),
	})
	if err != nil {
		return false, &EvaluationError{RequirementID: req.ID, Cause: err}
	}

	var (
		mu sync.Mutex
		v  verdict
	)
	err = resilience.Call(ctx, "criteria.llm", e.timeout, e.retry, func(ctx context.Context) error {
		text, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
		if err != nil {
			return err
		}
		var parsed verdict
		if err := json.Unmarshal([]byte(llm.CleanJSONBlock(text)), &parsed); err != nil {
			return resilience.Permanent(fmt.Errorf("malformed verdict: %w", err))
		}
		if parsed.Passed == nil {
			return resilience.Permanent(fmt.Errorf("verdict missing \"passed\""))
		}
		mu.Lock()
		v = parsed
		mu.Unlock()
		return nil
	})
	if err != nil {
		return false, &EvaluationError{RequirementID: req.ID, Cause: err}
	}

	mu.Lock()
	defer mu.Unlock()
	e.logger.Debug("requirement evaluated",
		zap.String("candidate_id", p.CandidateID),
		zap.String("requirement_id", req.ID),
		zap.Bool("passed", *v.Passed),
		zap.String("reason", v.Reason))
	return *v.Passed, nil
}
