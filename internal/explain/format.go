package explain

import (
	"fmt"
	"math"
	"strings"
)

// Format renders e as indented plain text
func Format(e *Explanation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Overall Match Score: %.2f%%\n\n", e.OverallScore*100)
	sb.WriteString("=== Breakdown ===\n")

	b := e.Breakdown
	section(&sb, "EDUCATION", b.Education.Reason,
		"score", num(b.Education.Score),
		"candidate_highest_degree", fmt.Sprint(b.Education.CandidateHighestDegree),
		"required_degree", fmt.Sprint(b.Education.RequiredDegree),
		"meets_requirement", fmt.Sprint(b.Education.MeetsRequirement),
		"field_match", num(b.Education.FieldMatch))
	section(&sb, "EXPERIENCE", b.Experience.Reason,
		"score", num(b.Experience.Score),
		"total_years", num(b.Experience.TotalYears),
		"required_years", num(b.Experience.RequiredYears),
		"years_in_required_titles", num(b.Experience.YearsInRequiredTitles),
		"title_similarity", num(b.Experience.TitleSimilarity),
		"recent_role_match", fmt.Sprint(b.Experience.RecentRoleMatch))
	section(&sb, "LANGUAGES", b.Languages.Reason,
		"score", num(b.Languages.Score),
		"all_mandatory_ok", fmt.Sprint(b.Languages.AllMandatoryOK),
		"mandatory_coverage", num(b.Languages.MandatoryCoverage),
		"preferred_coverage", num(b.Languages.PreferredCoverage))
	section(&sb, "SKILLS", b.Skills.Reason,
		"score", num(b.Skills.Score),
		"matched_skills", fmt.Sprintf("%d/%d %s", b.Skills.MatchedCount, b.Skills.TotalRequired, strings.Join(b.Skills.MatchedSkills, ", ")),
		"overlap_ratio", num(b.Skills.OverlapRatio),
		"weighted_match", num(b.Skills.WeightedMatch))
	section(&sb, "LOCATION", b.Location.Reason,
		"presence_mode", string(b.Location.PresenceMode),
		"location_match", fmt.Sprint(b.Location.LocationMatch),
		"distance_km", num(float64(b.Location.DistanceKm)),
		"candidate_relocates", fmt.Sprint(b.Location.CandidateRelocates))
	section(&sb, "MANDATORY_CRITERIA", b.MandatoryCriteria.Reason,
		"passed", fmt.Sprintf("%d/%d", b.MandatoryCriteria.PassedCount, b.MandatoryCriteria.TotalCount))

	if len(e.Strengths) > 0 {
		sb.WriteString("\n=== Strengths ===\n")
		for _, s := range e.Strengths {
			fmt.Fprintf(&sb, "  + %s\n", s)
		}
	}
	if len(e.Weaknesses) > 0 {
		sb.WriteString("\n=== Areas for Improvement ===\n")
		for _, w := range e.Weaknesses {
			fmt.Fprintf(&sb, "  - %s\n", w)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// section writes a titled block of key/value pairs followed by the reason
func section(sb *strings.Builder, title, reason string, kv ...string) {
	fmt.Fprintf(sb, "\n%s:\n", title)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(sb, "  %s: %s\n", kv[i], strings.TrimSpace(kv[i+1]))
	}
	fmt.Fprintf(sb, "  -> %s\n", reason)
}

func num(f float64) string {
	if math.IsInf(f, 0) {
		return "unknown"
	}
	return fmt.Sprintf("%.2f", f)
}
