// Package llm provides the Gemini client used for requirement checks,
// posting extraction and text embeddings.
package llm

import (
	"errors"
	"fmt"
)

// ModelTier selects a model by the difficulty of the prompt
type ModelTier string

const (
	// TierLite answers short yes/no judgments such as requirement checks
	TierLite ModelTier = "lite"
	// TierStandard handles structured extraction of postings
	TierStandard ModelTier = "standard"
)

// DefaultEmbeddingModel is the Gemini text embedding model
const DefaultEmbeddingModel = "text-embedding-004"

// Config selects the Gemini models used per tier
type Config struct {
	LiteModel      string
	StandardModel  string
	EmbeddingModel string
	// Temperature applies to every generation call; low values keep JSON stable
	Temperature float32
}

// DefaultConfig returns the flash models at temperature 0.1
func DefaultConfig() Config {
	return Config{
		LiteModel:      "gemini-2.5-flash-lite",
		StandardModel:  "gemini-2.5-flash",
		EmbeddingModel: DefaultEmbeddingModel,
		Temperature:    0.1,
	}
}

// Model returns the model for tier. A missing tier falls back to the other one.
func (c Config) Model(tier ModelTier) string {
	switch tier {
	case TierLite:
		if c.LiteModel != "" {
			return c.LiteModel
		}
		return c.StandardModel
	case TierStandard:
		if c.StandardModel != "" {
			return c.StandardModel
		}
		return c.LiteModel
	default:
		return ""
	}
}

// Validate checks that at least one generation model is set and the temperature is in range
func (c Config) Validate() error {
	var errs []error
	if c.LiteModel == "" && c.StandardModel == "" {
		errs = append(errs, errors.New("no generation model configured"))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature))
	}
	return errors.Join(errs...)
}
