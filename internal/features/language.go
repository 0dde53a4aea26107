package features

import (
	"strings"

	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Language compares the candidate's proficiency against mandatory and preferred requirements.
// With no mandatory requirements the mandatory coverage is 1; with no preferred
// requirements the preferred coverage is 0.
func (x *Extractor) Language(c *types.Candidate, j *types.JobPosting) Vector {
	claimed := CandidateLanguageOrdinals(c)

	var mandatory, preferred, satisfied, preferredMet int
	gapSum := 0.0
	allOK := true
	for _, req := range j.Languages {
		have := claimed[strings.ToLower(strings.TrimSpace(req.Language))]
		if req.Mandatory() {
			mandatory++
			gap := have - parsing.LanguageOrdinal(req.Level)
			gapSum += float64(gap)
			if gap >= 0 {
				satisfied++
			} else {
				allOK = false
			}
			continue
		}
		preferred++
		if have > 0 {
			preferredMet++
		}
	}

	avgGap := 0.0
	if mandatory > 0 {
		avgGap = gapSum / float64(mandatory)
	}
	return Vector{
		KeyNumMandatoryLanguages:          float64(mandatory),
		KeyNumPreferredLanguages:          float64(preferred),
		KeyMandatoryLanguageCoverageRatio: ratio(float64(satisfied), float64(mandatory), 1),
		KeyAllMandatoryLanguagesOK:        flag(allOK),
		KeyPreferredLanguageCoverageRatio: ratio(float64(preferredMet), float64(preferred), 0),
		KeyAvgLanguageGap:                 avgGap,
	}
}

// CandidateLanguageOrdinals maps lowercased language names to the best claimed ordinal
func CandidateLanguageOrdinals(c *types.Candidate) map[string]int {
	out := make(map[string]int, len(c.Languages))
	for _, l := range c.Languages {
		name := strings.ToLower(strings.TrimSpace(l.Language))
		out[name] = max(out[name], parsing.LanguageOrdinal(l.Level))
	}
	return out
}
