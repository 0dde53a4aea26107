package features

import (
	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Education compares degree levels and fields of study
func (x *Extractor) Education(c *types.Candidate, j *types.JobPosting) Vector {
	candidateLevel := x.HighestDegreeLevel(c)
	requiredLevel := x.mapper.DegreeLevel(j.Education.Level)

	candidateFields := make(map[string]struct{})
	for _, edu := range c.Education {
		addField(candidateFields, edu.Department)
		addField(candidateFields, edu.Speciality)
	}
	requiredFields := make(map[string]struct{})
	addField(requiredFields, j.Education.Department)
	addField(requiredFields, j.Education.Speciality)

	return Vector{
		KeyCandidateHighestDegreeLevel: float64(candidateLevel),
		KeyRequiredMinDegreeLevel:      float64(requiredLevel),
		KeyHasRequiredDegreeLevel:      flag(candidateLevel >= requiredLevel),
		KeyDegreeLevelGap:              float64(candidateLevel - requiredLevel),
		KeyFieldMatchScore:             jaccard(candidateFields, requiredFields),
	}
}

// HighestDegreeLevel returns the best degree level across the candidate's education records
func (x *Extractor) HighestDegreeLevel(c *types.Candidate) int {
	highest := 0
	for _, edu := range c.Education {
		highest = max(highest, x.mapper.HighestDegreeLevel(edu.Level))
	}
	return highest
}

func addField(set map[string]struct{}, field string) {
	if n := parsing.NormalizeText(field); n != "" {
		set[n] = struct{}{}
	}
}

// jaccard is |a∩b| / |a∪b|, 0 when both are empty
func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
