package features

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/types"
)

const daysPerYear = 365.25

// Experience measures tenure, tenure in the job's role and role similarity
func (x *Extractor) Experience(ctx context.Context, c *types.Candidate, j *types.JobPosting) (Vector, error) {
	durations, err := x.recordYears(c)
	if err != nil {
		return nil, err
	}

	jobTitle := x.mapper.MapTitle(j.Title)
	total, inTitle := 0.0, 0.0
	for i, exp := range c.Experience {
		total += durations[i]
		if jobTitle != "" && x.mapper.MapTitle(exp.Title) == jobTitle {
			inTitle += durations[i]
		}
	}

	recentMatch := false
	if recent := mostRecent(c.Experience); recent >= 0 {
		recentMatch = jobTitle != "" && x.mapper.MapTitle(c.Experience[recent].Title) == jobTitle
	}

	similarity, err := x.titleSimilarity(ctx, c, j)
	if err != nil {
		return nil, err
	}

	required := parsing.ParseExperienceLevel(j.ExperienceLevel)
	return Vector{
		KeyTotalYearsExperience:            total,
		KeyRequiredYearsExperience:         required,
		KeyExperienceApproval:              flag(total >= required),
		KeyTitleSimilarityScore:            similarity,
		KeyYearsExperienceInRequiredTitles: inTitle,
		KeyRecentRoleMatch:                 flag(recentMatch),
	}, nil
}

// TotalYears sums the duration of every experience record
func (x *Extractor) TotalYears(c *types.Candidate) (float64, error) {
	durations, err := x.recordYears(c)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, d := range durations {
		total += d
	}
	return total, nil
}

// recordYears returns each record's duration in years. Open-ended and
// current records run until now.
func (x *Extractor) recordYears(c *types.Candidate) ([]float64, error) {
	now := x.now()
	out := make([]float64, len(c.Experience))
	for i, exp := range c.Experience {
		if exp.StartDate == nil || exp.StartDate.IsZero() {
			return nil, &MalformedInputError{
				Field:   fmt.Sprintf("candidate %s experience[%d].start_date", c.ID, i),
				Message: "start date is required",
			}
		}
		end := now
		if !exp.IsCurrent && exp.EndDate != nil && !exp.EndDate.IsZero() {
			end = exp.EndDate.Time
		}
		if end.Before(exp.StartDate.Time) {
			return nil, &MalformedInputError{
				Field:   fmt.Sprintf("candidate %s experience[%d].end_date", c.ID, i),
				Message: "end date precedes start date",
			}
		}
		out[i] = end.Sub(exp.StartDate.Time).Hours() / 24 / daysPerYear
	}
	return out, nil
}

// mostRecent returns the index of the record with the latest start, current
// roles winning ties, or -1 for no records
func mostRecent(records []types.ExperienceRecord) int {
	best := -1
	var bestStart time.Time
	for i, exp := range records {
		if exp.StartDate == nil {
			continue
		}
		start := exp.StartDate.Time
		if best < 0 || start.After(bestStart) || (start.Equal(bestStart) && exp.IsCurrent && !records[best].IsCurrent) {
			best, bestStart = i, start
		}
	}
	return best
}

// titleSimilarity is the best cosine between any record's title and
// description and the job's title and description
func (x *Extractor) titleSimilarity(ctx context.Context, c *types.Candidate, j *types.JobPosting) (float64, error) {
	jobText := j.TitleAndDescription()
	if jobText == "" {
		return 0, nil
	}
	texts := []string{jobText}
	for _, exp := range c.Experience {
		if t := strings.TrimSpace(exp.Title + " " + exp.Description); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 1 {
		return 0, nil
	}

	vectors, err := x.embedder.EncodeBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("title similarity: %w", err)
	}
	return embedding.MaxCosine(vectors[0], vectors[1:]), nil
}
