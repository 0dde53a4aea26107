package main

import (
	"github.com/jonathan/talent-matcher/internal/dataset"
	"github.com/jonathan/talent-matcher/internal/observability"
	"github.com/jonathan/talent-matcher/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newEvaluateCmd(c *cli) *cobra.Command {
	var (
		jobsFile       string
		candidatesFile string
		judgmentsFile  string
		k              int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure ranking quality against relevance judgments with NDCG@k",
		Long:  "Rank the candidate pool for every judged job and report per-job and mean NDCG@k.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := dataset.LoadJobs(jobsFile)
			if err != nil {
				return err
			}
			candidates, err := dataset.LoadCandidates(candidatesFile)
			if err != nil {
				return err
			}
			judgments, err := dataset.LoadJudgments(judgmentsFile)
			if err != nil {
				return err
			}

			rec, _, log, err := c.recommender(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close(); _ = log.Sync() }()

			report, err := rec.Evaluate(cmd.Context(), jobs, candidates, judgments, k, func(q pipeline.QueryResult) {
				log.Debug("job evaluated", zap.String("job_id", q.JobID), zap.Float64("ndcg", q.NDCG))
			})
			if err != nil {
				return err
			}
			return c.emit(report, func(p *observability.Printer) {
				p.PrintEvaluation(report)
			})
		},
	}

	cmd.Flags().StringVarP(&jobsFile, "jobs", "j", "", "job postings file (required)")
	cmd.Flags().StringVarP(&candidatesFile, "candidates", "c", "", "candidates file (required)")
	cmd.Flags().StringVar(&judgmentsFile, "judgments", "", "relevance judgments file (required)")
	cmd.Flags().IntVarP(&k, "k", "k", 10, "rank cutoff for NDCG")
	_ = cmd.MarkFlagRequired("jobs")
	_ = cmd.MarkFlagRequired("candidates")
	_ = cmd.MarkFlagRequired("judgments")
	return cmd
}
