package main

import (
	"github.com/jonathan/talent-matcher/internal/dataset"
	"github.com/jonathan/talent-matcher/internal/observability"
	"github.com/jonathan/talent-matcher/internal/pipeline"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// rankFlags override the configured ranking options when set
type rankFlags struct {
	topK     int
	noFilter bool
	explain  bool
}

func (f *rankFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.topK, "top-k", "k", 0, "number of matches to return, 0 for all (default from config)")
	fs.BoolVar(&f.noFilter, "no-filter", false, "score every pair instead of dropping ineligible ones")
	fs.BoolVar(&f.explain, "explain", false, "attach an explanation to every returned match")
}

func (f *rankFlags) options(cmd *cobra.Command, rec *pipeline.Recommender) ranking.Options {
	opts := rec.DefaultOptions()
	if cmd.Flags().Changed("top-k") {
		opts.TopK = f.topK
	}
	if f.noFilter {
		opts.UseHardFilter = false
	}
	if f.explain {
		opts.Explain = true
	}
	return opts
}

func newRankCandidatesCmd(c *cli) *cobra.Command {
	var (
		jobFile        string
		jobID          string
		candidatesFile string
		flags          rankFlags
	)

	cmd := &cobra.Command{
		Use:   "rank-candidates",
		Short: "Rank a candidate pool for one job",
		Long:  "Rank every candidate in --candidates against the job selected from --job, most suitable first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := dataset.LoadJob(jobFile, jobID)
			if err != nil {
				return err
			}
			candidates, err := dataset.LoadCandidates(candidatesFile)
			if err != nil {
				return err
			}

			rec, _, log, err := c.recommender(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close(); _ = log.Sync() }()

			res, err := rec.RankCandidates(cmd.Context(), job, candidates, flags.options(cmd, rec))
			if err != nil {
				return err
			}
			log.Debug("ranked candidates", zap.String("job_id", job.ID), zap.Int("matches", len(res.Matches)))
			return c.emit(res, func(p *observability.Printer) {
				p.PrintRanking(res)
				p.PrintExcluded(res)
			})
		},
	}

	cmd.Flags().StringVarP(&jobFile, "job", "j", "", "job postings file (required)")
	cmd.Flags().StringVar(&jobID, "job-id", "", "job to rank for when the file holds several")
	cmd.Flags().StringVarP(&candidatesFile, "candidates", "c", "", "candidates file (required)")
	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

func newRankJobsCmd(c *cli) *cobra.Command {
	var (
		candidateFile string
		candidateID   string
		jobsFile      string
		flags         rankFlags
	)

	cmd := &cobra.Command{
		Use:   "rank-jobs",
		Short: "Rank a job pool for one candidate",
		Long:  "Rank every job in --jobs for the candidate selected from --candidate, most suitable first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			candidate, err := dataset.LoadCandidate(candidateFile, candidateID)
			if err != nil {
				return err
			}
			jobs, err := dataset.LoadJobs(jobsFile)
			if err != nil {
				return err
			}

			rec, _, log, err := c.recommender(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close(); _ = log.Sync() }()

			res, err := rec.RankJobs(cmd.Context(), candidate, jobs, flags.options(cmd, rec))
			if err != nil {
				return err
			}
			log.Debug("ranked jobs", zap.String("candidate_id", candidate.ID), zap.Int("matches", len(res.Matches)))
			return c.emit(res, func(p *observability.Printer) {
				p.PrintRanking(res)
				p.PrintExcluded(res)
			})
		},
	}

	cmd.Flags().StringVarP(&candidateFile, "candidate", "c", "", "candidates file (required)")
	cmd.Flags().StringVar(&candidateID, "candidate-id", "", "candidate to rank for when the file holds several")
	cmd.Flags().StringVarP(&jobsFile, "jobs", "j", "", "job postings file (required)")
	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("candidate")
	_ = cmd.MarkFlagRequired("jobs")
	return cmd
}
