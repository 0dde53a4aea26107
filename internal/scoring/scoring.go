// Package scoring computes the interpretable layer scores and their weighted aggregate.
package scoring

import (
	"context"

	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Weights are the layer weights; they sum to 1
type Weights struct {
	Name       string  `json:"name"`
	Education  float64 `json:"education"`
	Experience float64 `json:"experience"`
	Language   float64 `json:"language"`
	Skill      float64 `json:"skill"`
}

// Weight sets, chosen by whether the job is research oriented
var (
	ResearchWeights = Weights{Name: "research", Education: 0.35, Experience: 0.25, Language: 0.15, Skill: 0.25}
	DefaultWeights  = Weights{Name: "engineering", Education: 0.15, Experience: 0.45, Language: 0.15, Skill: 0.25}
)

// SkillCoverageGate is the weighted skill coverage below which the skill layer scores 0
const SkillCoverageGate = 0.5

// LayerScores are the four sub-scores, the weights applied and the aggregate
type LayerScores struct {
	Education  float64 `json:"S_edu"`
	Experience float64 `json:"S_exp"`
	Language   float64 `json:"S_lang"`
	Skill      float64 `json:"S_skill"`
	Weights    Weights `json:"weights"`
	Base       float64 `json:"S_base"`
}

// Engine scores pairs from their feature vectors
type Engine struct {
	extractor *features.Extractor
}

// NewEngine creates a scoring engine over extractor
func NewEngine(extractor *features.Extractor) *Engine {
	return &Engine{extractor: extractor}
}

// ComputeAggregatedScore extracts features and returns S_base with its layer scores
func (e *Engine) ComputeAggregatedScore(ctx context.Context, c *types.Candidate, j *types.JobPosting) (float64, LayerScores, error) {
	v, err := e.extractor.ExtractAll(ctx, c, j)
	if err != nil {
		return 0, LayerScores{}, err
	}
	scores := Score(v, e.SelectWeights(j))
	return scores.Base, scores, nil
}

// SelectWeights picks the research weights when the job's title or description mentions a research keyword
func (e *Engine) SelectWeights(j *types.JobPosting) Weights {
	if e.extractor.Mapper().IsResearchText(j.TitleAndDescription()) {
		return ResearchWeights
	}
	return DefaultWeights
}

// Score computes every layer from v and aggregates with w
func Score(v features.Vector, w Weights) LayerScores {
	s := LayerScores{
		Education:  EducationScore(v),
		Experience: ExperienceScore(v),
		Language:   LanguageScore(v),
		Skill:      SkillScore(v),
		Weights:    w,
	}
	s.Base = clamp01(w.Education*s.Education + w.Experience*s.Experience + w.Language*s.Language + w.Skill*s.Skill)
	return s
}

// EducationScore is 0 below the required degree, else 0.7 plus field-match bonuses
func EducationScore(v features.Vector) float64 {
	if !v.Flag(features.KeyHasRequiredDegreeLevel) {
		return 0
	}
	score := 0.7
	field := v.Get(features.KeyFieldMatchScore)
	if field > 0.5 {
		score += 0.2
	}
	if field > 0.8 {
		score += 0.1
	}
	return clamp01(score)
}

// ExperienceScore blends tenure, tenure in the role and title similarity
func ExperienceScore(v features.Vector) float64 {
	required := v.Get(features.KeyRequiredYearsExperience)
	total := yearsRatio(v.Get(features.KeyTotalYearsExperience), required)
	inTitle := yearsRatio(v.Get(features.KeyYearsExperienceInRequiredTitles), required)
	similarity := (v.Get(features.KeyTitleSimilarityScore) + 1) / 2
	return clamp01(0.4*total + 0.3*inTitle + 0.3*similarity)
}

// LanguageScore is 0 if any mandatory language is unmet
func LanguageScore(v features.Vector) float64 {
	if !v.Flag(features.KeyAllMandatoryLanguagesOK) {
		return 0
	}
	return clamp01(0.7*v.Get(features.KeyMandatoryLanguageCoverageRatio) + 0.3*v.Get(features.KeyPreferredLanguageCoverageRatio))
}

// SkillScore is 0 below the coverage gate, else a blend of overlap and weighted match
func SkillScore(v features.Vector) float64 {
	if v.Get(features.KeyMandatorySkillCoverageRatio) < SkillCoverageGate {
		return 0
	}
	return clamp01(0.6*v.Get(features.KeySkillOverlapRatio) + 0.4*v.Get(features.KeyWeightedSkillMatchScore))
}

func yearsRatio(years, required float64) float64 {
	if required == 0 {
		return 1
	}
	return clamp01(years / required)
}

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
