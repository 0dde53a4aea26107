// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jonathan/talent-matcher/internal/explain"
	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/filter"
	"github.com/jonathan/talent-matcher/internal/pipeline"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/jonathan/talent-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printBanner prints a single-line box
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBanner(text string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, text)
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

// PrintJobPosting outputs a human-readable summary of a job posting.
func (p *Printer) PrintJobPosting(j *types.JobPosting) {
	if j == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "ID:       %s\n", j.ID)
	fmt.Fprintf(&sb, "Title:    %s\n", j.Title)
	fmt.Fprintf(&sb, "Mode:     %s\n", j.PresenceMode)
	if j.Location.City != "" || j.Location.Country != "" {
		fmt.Fprintf(&sb, "Location: %s\n", strings.Trim(j.Location.City+", "+j.Location.Country, ", "))
	}
	if j.Education.Level != "" {
		fmt.Fprintf(&sb, "Degree:   %s\n", j.Education.Level)
	}
	if j.ExperienceLevel != "" {
		fmt.Fprintf(&sb, "Exp:      %s\n", j.ExperienceLevel)
	}

	if len(j.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(j.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			fmt.Fprintf(&sb, "  • %s (%.1f)\n", j.Skills[i].Name, j.Skills[i].EffectiveWeight())
		}
		if len(j.Skills) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(j.Skills)-maxItemsToShow)
		}
	}

	if len(j.Languages) > 0 {
		sb.WriteString("\nLanguages:\n")
		for _, l := range j.Languages {
			kind := "preferred"
			if l.Mandatory() {
				kind = "mandatory"
			}
			fmt.Fprintf(&sb, "  • %s %s (%s)\n", l.Language, l.Level, kind)
		}
	}

	if len(j.CriticalRequirements) > 0 {
		sb.WriteString("\nCritical Requirements:\n")
		for _, cr := range j.CriticalRequirements {
			fmt.Fprintf(&sb, "  • [%s] %s\n", cr.ID, cr.Requirement)
		}
	}

	p.printBox("JOB POSTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRanking outputs the ranked matches with scores and matched skills.
func (p *Printer) PrintRanking(res *ranking.Result) {
	if res == nil {
		return
	}
	if len(res.Matches) == 0 {
		p.printBanner(fmt.Sprintf("NO MATCHES FOR %s (pool of %d)", res.SubjectID, res.PoolSize))
		return
	}

	title := "TOP CANDIDATES FOR " + res.SubjectID
	if res.Direction == ranking.DirectionJobs {
		title = "TOP JOBS FOR " + res.SubjectID
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Pool: %d  Filtered: %d  Failed: %d\n\n", res.PoolSize, len(res.Filtered), len(res.Failures))
	for i, m := range res.Matches {
		fmt.Fprintf(&sb, "#%d  %s\n", m.Rank, m.ID)
		fmt.Fprintf(&sb, "    Score: %.4f (base %.2f)\n", m.Score, m.Layers.Base)
		fmt.Fprintf(&sb, "    edu %.2f  exp %.2f  lang %.2f  skill %.2f\n",
			m.Layers.Education, m.Layers.Experience, m.Layers.Language, m.Layers.Skill)
		if len(m.MatchedSkills) > 0 {
			fmt.Fprintf(&sb, "    Skills: %s\n", truncate(strings.Join(m.MatchedSkills, ", "), 40))
		}
		if i < len(res.Matches)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExcluded outputs filtered and failed pool entries.
func (p *Printer) PrintExcluded(res *ranking.Result) {
	if res == nil {
		return
	}
	if len(res.Filtered) == 0 && len(res.Failures) == 0 {
		p.printBanner("✅ NOTHING FILTERED OR FAILED")
		return
	}

	var sb strings.Builder
	if len(res.Filtered) > 0 {
		fmt.Fprintf(&sb, "Filtered %d:\n", len(res.Filtered))
		for _, f := range res.Filtered {
			fmt.Fprintf(&sb, "  • %s\n    %s\n", f.ID, f.Reason)
		}
	}
	if len(res.Failures) > 0 {
		if len(res.Filtered) > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Failed %d:\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(&sb, "⚠ %s (%s)\n  %s\n", f.ID, f.Kind, f.Error)
		}
	}

	p.printBox("EXCLUDED FROM RANKING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFeatures outputs every feature of a pair in key order.
func (p *Printer) PrintFeatures(candidateID, jobID string, v features.Vector) {
	if len(v) == 0 {
		return
	}

	var sb strings.Builder
	for _, key := range v.Keys() {
		x := v[key]
		switch {
		case math.IsInf(x, 0):
			fmt.Fprintf(&sb, "%-34s unknown\n", key)
		default:
			fmt.Fprintf(&sb, "%-34s %.4f\n", key, x)
		}
	}

	p.printBox(fmt.Sprintf("FEATURES %s × %s", candidateID, jobID), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExplanation outputs the formatted explanation text.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintExplanation(e *explain.Explanation) {
	if e == nil {
		return
	}
	fmt.Fprintf(p.out, "%s × %s\n", e.CandidateID, e.JobID)
	fmt.Fprintln(p.out, explain.Format(e))
}

// PrintFilterDecision outputs the hard filter verdict for one pair
func (p *Printer) PrintFilterDecision(d filter.Decision) {
	if d.Filtered {
		p.printBanner("⛔ EXCLUDED BY HARD FILTER: " + d.Reason)
		return
	}
	p.printBanner("✅ PASSES HARD FILTER")
}

// PrintEvaluation outputs per-job and mean NDCG.
func (p *Printer) PrintEvaluation(report *pipeline.EvaluationReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Mean NDCG@%d: %.4f over %d jobs\n\n", report.K, report.MeanNDCG, len(report.Queries))
	for _, q := range report.Queries {
		fmt.Fprintf(&sb, "%-20s %.4f  (labelled %d, returned %d, filtered %d, failed %d)\n",
			truncate(q.JobID, 20), q.NDCG, q.Labelled, q.Returned, q.Filtered, q.Failed)
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintf(&sb, "\nSkipped (not in pool): %s\n", strings.Join(report.Skipped, ", "))
	}

	p.printBox("EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}
