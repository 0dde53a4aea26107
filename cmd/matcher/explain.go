package main

import (
	"math"

	"github.com/jonathan/talent-matcher/internal/dataset"
	"github.com/jonathan/talent-matcher/internal/explain"
	"github.com/jonathan/talent-matcher/internal/features"
	"github.com/jonathan/talent-matcher/internal/filter"
	"github.com/jonathan/talent-matcher/internal/observability"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/spf13/cobra"
)

// pairFlags select one candidate and one job
type pairFlags struct {
	candidateFile string
	candidateID   string
	jobFile       string
	jobID         string
}

func (f *pairFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.candidateFile, "candidate", "c", "", "candidates file (required)")
	fs.StringVar(&f.candidateID, "candidate-id", "", "candidate to use when the file holds several")
	fs.StringVarP(&f.jobFile, "job", "j", "", "job postings file (required)")
	fs.StringVar(&f.jobID, "job-id", "", "job to use when the file holds several")
	_ = cmd.MarkFlagRequired("candidate")
	_ = cmd.MarkFlagRequired("job")
}

func (f *pairFlags) load() (*types.Candidate, *types.JobPosting, error) {
	candidate, err := dataset.LoadCandidate(f.candidateFile, f.candidateID)
	if err != nil {
		return nil, nil, err
	}
	job, err := dataset.LoadJob(f.jobFile, f.jobID)
	if err != nil {
		return nil, nil, err
	}
	return candidate, job, nil
}

func newExplainCmd(c *cli) *cobra.Command {
	var pair pairFlags

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain the score of one candidate for one job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			candidate, job, err := pair.load()
			if err != nil {
				return err
			}

			rec, _, log, err := c.recommender(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close(); _ = log.Sync() }()

			decision, err := rec.Filter(cmd.Context(), candidate, job)
			if err != nil {
				return err
			}
			exp, err := rec.Explain(cmd.Context(), candidate, job)
			if err != nil {
				return err
			}

			out := struct {
				Filter      filter.Decision      `json:"filter"`
				Explanation *explain.Explanation `json:"explanation"`
			}{Filter: decision, Explanation: exp}
			return c.emit(out, func(p *observability.Printer) {
				p.PrintFilterDecision(decision)
				p.PrintExplanation(exp)
			})
		},
	}

	pair.register(cmd)
	return cmd
}

func newFeaturesCmd(c *cli) *cobra.Command {
	var pair pairFlags

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Print the feature vector of one candidate and one job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			candidate, job, err := pair.load()
			if err != nil {
				return err
			}

			rec, _, log, err := c.recommender(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close(); _ = log.Sync() }()

			v, err := rec.Features(cmd.Context(), candidate, job)
			if err != nil {
				return err
			}
			return c.emit(jsonSafe(v), func(p *observability.Printer) {
				p.PrintFeatures(candidate.ID, job.ID, v)
			})
		},
	}

	pair.register(cmd)
	return cmd
}

// jsonSafe replaces unknown distances, which JSON cannot encode, with nil
func jsonSafe(v features.Vector) map[string]*float64 {
	out := make(map[string]*float64, len(v))
	for k, x := range v {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			out[k] = nil
			continue
		}
		x := x
		out[k] = &x
	}
	return out
}
