// Package explain turns feature vectors and layer scores into a readable rationale.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/scoring"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Kilometers is a distance that marshals to null when undeterminable
type Kilometers float64

// MarshalJSON writes null for infinite or NaN distances
func (k Kilometers) MarshalJSON() ([]byte, error) {
	f := float64(k)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Explanation is the full rationale for one candidate-job score
type Explanation struct {
	CandidateID  string              `json:"candidate_id"`
	JobID        string              `json:"job_id"`
	OverallScore float64             `json:"overall_score"`
	Layers       scoring.LayerScores `json:"layer_scores"`
	Breakdown    Breakdown           `json:"breakdown"`
	Strengths    []string            `json:"strengths"`
	Weaknesses   []string            `json:"weaknesses"`
}

// Breakdown holds one entry per category
type Breakdown struct {
	Education         Education         `json:"education"`
	Experience        Experience        `json:"experience"`
	Languages         Languages         `json:"languages"`
	Skills            Skills            `json:"skills"`
	Location          Location          `json:"location"`
	MandatoryCriteria MandatoryCriteria `json:"mandatory_criteria"`
}

type Education struct {
	Score                  float64 `json:"score"`
	CandidateHighestDegree int     `json:"candidate_highest_degree"`
	RequiredDegree         int     `json:"required_degree"`
	MeetsRequirement       bool    `json:"meets_requirement"`
	FieldMatch             float64 `json:"field_match"`
	Reason                 string  `json:"reason"`
}

type Experience struct {
	Score                 float64 `json:"score"`
	TotalYears            float64 `json:"total_years"`
	RequiredYears         float64 `json:"required_years"`
	YearsInRequiredTitles float64 `json:"years_in_required_titles"`
	TitleSimilarity       float64 `json:"title_similarity"`
	RecentRoleMatch       bool    `json:"recent_role_match"`
	Reason                string  `json:"reason"`
}

type Languages struct {
	Score             float64 `json:"score"`
	AllMandatoryOK    bool    `json:"all_mandatory_ok"`
	MandatoryCoverage float64 `json:"mandatory_coverage"`
	PreferredCoverage float64 `json:"preferred_coverage"`
	AverageGap        float64 `json:"average_gap"`
	Reason            string  `json:"reason"`
}

type Skills struct {
	Score         float64  `json:"score"`
	MatchedCount  int      `json:"matched_skills_count"`
	TotalRequired int      `json:"total_required_skills"`
	OverlapRatio  float64  `json:"overlap_ratio"`
	WeightedMatch float64  `json:"weighted_match"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
	Reason        string   `json:"reason"`
}

type Location struct {
	PresenceMode       types.PresenceMode `json:"presence_mode"`
	IsOnline           bool               `json:"is_online"`
	LocationMatch      bool               `json:"location_match"`
	DistanceKm         Kilometers         `json:"distance_km"`
	CandidateRelocates bool               `json:"candidate_relocates"`
	Reason             string             `json:"reason"`
}

type MandatoryCriteria struct {
	AllPassed   bool   `json:"all_passed"`
	PassedCount int    `json:"passed_count"`
	TotalCount  int    `json:"total_count"`
	Reason      string `json:"reason"`
}

// Engine builds explanations
type Engine struct {
	extractor *features.Extractor
	scorer    *scoring.Engine
}

// NewEngine creates an explanation engine
func NewEngine(extractor *features.Extractor, scorer *scoring.Engine) *Engine {
	return &Engine{extractor: extractor, scorer: scorer}
}

// Generate extracts fresh features and scores, then explains them
func (e *Engine) Generate(ctx context.Context, c *types.Candidate, j *types.JobPosting) (*Explanation, error) {
	v, err := e.extractor.ExtractAll(ctx, c, j)
	if err != nil {
		return nil, err
	}
	layers := scoring.Score(v, e.scorer.SelectWeights(j))
	return e.FromFeatures(c, j, v, layers), nil
}

// FromFeatures explains an already computed vector and its layer scores
func (e *Engine) FromFeatures(c *types.Candidate, j *types.JobPosting, v features.Vector, layers scoring.LayerScores) *Explanation {
	return &Explanation{
		CandidateID:  c.ID,
		JobID:        j.ID,
		OverallScore: layers.Base,
		Layers:       layers,
		Breakdown: Breakdown{
			Education:         explainEducation(v, layers),
			Experience:        explainExperience(v, layers),
			Languages:         explainLanguages(v, layers),
			Skills:            explainSkills(v, layers, e.extractor.MatchedSkills(c, j)),
			Location:          explainLocation(c, j, v),
			MandatoryCriteria: explainCriteria(v),
		},
		Strengths:  strengths(v, layers),
		Weaknesses: weaknesses(j, v, layers),
	}
}

func explainEducation(v features.Vector, layers scoring.LayerScores) Education {
	out := Education{
		Score:                  layers.Education,
		CandidateHighestDegree: int(v.Get(features.KeyCandidateHighestDegreeLevel)),
		RequiredDegree:         int(v.Get(features.KeyRequiredMinDegreeLevel)),
		MeetsRequirement:       v.Flag(features.KeyHasRequiredDegreeLevel),
		FieldMatch:             v.Get(features.KeyFieldMatchScore),
	}
	switch {
	case !out.MeetsRequirement:
		out.Reason = "Candidate does not meet minimum education requirement"
	case out.FieldMatch < 0.5:
		out.Reason = "Education level meets requirement but field mismatch"
	default:
		out.Reason = "Strong education match"
	}
	return out
}

func explainExperience(v features.Vector, layers scoring.LayerScores) Experience {
	out := Experience{
		Score:                 layers.Experience,
		TotalYears:            v.Get(features.KeyTotalYearsExperience),
		RequiredYears:         v.Get(features.KeyRequiredYearsExperience),
		YearsInRequiredTitles: v.Get(features.KeyYearsExperienceInRequiredTitles),
		TitleSimilarity:       v.Get(features.KeyTitleSimilarityScore),
		RecentRoleMatch:       v.Flag(features.KeyRecentRoleMatch),
	}
	switch {
	case out.Score < 0.3:
		out.Reason = "Limited relevant experience"
	case out.Score < 0.7:
		out.Reason = "Moderate experience match"
	default:
		out.Reason = "Strong experience alignment"
	}
	return out
}

func explainLanguages(v features.Vector, layers scoring.LayerScores) Languages {
	out := Languages{
		Score:             layers.Language,
		AllMandatoryOK:    v.Flag(features.KeyAllMandatoryLanguagesOK),
		MandatoryCoverage: v.Get(features.KeyMandatoryLanguageCoverageRatio),
		PreferredCoverage: v.Get(features.KeyPreferredLanguageCoverageRatio),
		AverageGap:        v.Get(features.KeyAvgLanguageGap),
	}
	switch {
	case !out.AllMandatoryOK:
		out.Reason = "Mandatory languages not satisfied"
	case out.Score < 0.5:
		out.Reason = "Some language requirements not fully met"
	default:
		out.Reason = "Language requirements satisfied"
	}
	return out
}

func explainSkills(v features.Vector, layers scoring.LayerScores, matched []string) Skills {
	out := Skills{
		Score:         layers.Skill,
		MatchedCount:  int(v.Get(features.KeySkillOverlapCount)),
		TotalRequired: int(v.Get(features.KeyNumRequiredSkills)),
		OverlapRatio:  v.Get(features.KeySkillOverlapRatio),
		WeightedMatch: v.Get(features.KeyWeightedSkillMatchScore),
		MatchedSkills: matched,
	}
	switch {
	case out.Score == 0:
		out.Reason = "Critical skills missing"
	case out.Score < 0.5:
		out.Reason = fmt.Sprintf("Only %d/%d required skills matched", out.MatchedCount, out.TotalRequired)
	default:
		out.Reason = fmt.Sprintf("Strong skills match: %d/%d skills", out.MatchedCount, out.TotalRequired)
	}
	return out
}

func explainLocation(c *types.Candidate, j *types.JobPosting, v features.Vector) Location {
	out := Location{
		PresenceMode:       j.PresenceMode,
		IsOnline:           j.IsOnline(),
		LocationMatch:      v.Flag(features.KeyLocationMatch),
		DistanceKm:         Kilometers(v.Get(features.KeyGeodesicDistance)),
		CandidateRelocates: c.WillingToRelocate,
	}
	switch {
	case out.IsOnline:
		out.DistanceKm = 0
		out.Reason = "Online position - location not relevant"
	case out.LocationMatch && out.DistanceKm < 50:
		out.Reason = "Same city/region"
	case out.LocationMatch:
		out.Reason = "Candidate willing to relocate"
	default:
		out.Reason = "Location mismatch and candidate not willing to relocate"
	}
	return out
}

func explainCriteria(v features.Vector) MandatoryCriteria {
	out := MandatoryCriteria{
		AllPassed:   v.Flag(features.KeyMandatoryCriteriaAllPass),
		PassedCount: int(v.Get(features.KeyNumMandatoryCriteriaPassed)),
		TotalCount:  int(v.Get(features.KeyMandatoryCriteriaTotal)),
	}
	if out.AllPassed {
		out.Reason = "All mandatory criteria satisfied"
	} else {
		out.Reason = fmt.Sprintf("Only %d/%d mandatory criteria passed", out.PassedCount, out.TotalCount)
	}
	return out
}

func strengths(v features.Vector, layers scoring.LayerScores) []string {
	out := []string{}
	if layers.Education > 0.8 {
		out = append(out, "Excellent education match")
	}
	if layers.Experience > 0.7 {
		out = append(out, "Strong relevant experience")
	}
	if layers.Skill > 0.8 {
		out = append(out, "High skills overlap")
	}
	if v.Get(features.KeyTitleSimilarityScore) > 0.7 {
		out = append(out, "Very similar role experience")
	}
	if v.Flag(features.KeyRecentRoleMatch) {
		out = append(out, "Current role aligns with job")
	}
	return out
}

func weaknesses(j *types.JobPosting, v features.Vector, layers scoring.LayerScores) []string {
	out := []string{}
	if layers.Education < 0.5 {
		out = append(out, "Education level or field mismatch")
	}
	if layers.Experience < 0.5 {
		out = append(out, "Limited relevant experience")
	}
	if layers.Language < 0.5 {
		out = append(out, "Language requirements not fully met")
	}
	if layers.Skill < 0.5 {
		out = append(out, "Skills gap")
	}
	if !j.IsOnline() && !v.Flag(features.KeyLocationMatch) {
		out = append(out, "Location constraint")
	}
	return out
}
