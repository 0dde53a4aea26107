package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/fetch"
	"github.com/jonathan/talent-matcher/internal/observability"
	"github.com/jonathan/talent-matcher/internal/schemas"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newParseJobCmd(c *cli) *cobra.Command {
	var (
		inputFile  string
		postingURL string
		render     bool
		outputFile string
		jobID      string
	)

	cmd := &cobra.Command{
		Use:   "parse-job",
		Short: "Parse a free-text job posting into a structured job record",
		Long:  "Parse a free-text job posting, read from a file, stdin or a URL, with the LLM into a job record that validates against the job_posting schema. Requires a Gemini API key.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, _, log, err := c.recommender(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close(); _ = log.Sync() }()

			var raw []byte
			if postingURL != "" {
				page, err := fetch.Posting(cmd.Context(), postingURL, fetch.PostingOptions{Browser: render, Logger: log})
				if err != nil {
					return err
				}
				log.Info("fetched posting", zap.String("url", page.URL), zap.String("platform", string(page.Platform)), zap.Bool("rendered", page.Rendered))
				raw = []byte(page.Text)
			} else if raw, err = readInput(cmd, inputFile); err != nil {
				return err
			}

			if jobID == "" {
				jobID = "job-" + uuid.NewString()
			}
			job, err := rec.ParseJob(cmd.Context(), jobID, string(raw))
			if err != nil {
				return fmt.Errorf("failed to parse job posting: %w", err)
			}

			data, err := json.MarshalIndent(job, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal job posting: %w", err)
			}
			if err := schemas.Validate(schemas.JobPosting, data); err != nil {
				return fmt.Errorf("parsed job posting failed validation: %w", err)
			}

			if outputFile != "" {
				if err := os.WriteFile(outputFile, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				log.Info("job posting written", zap.String("path", outputFile), zap.String("job_id", job.ID))
				return nil
			}
			return c.emit(job, func(p *observability.Printer) {
				p.PrintJobPosting(job)
			})
		},
	}

	cmd.Flags().StringVarP(&inputFile, "in", "i", "-", "posting text file, - for stdin")
	cmd.Flags().StringVar(&postingURL, "url", "", "fetch the posting from this URL instead of --in")
	cmd.Flags().BoolVar(&render, "render", false, "render pages with too little static text in headless Chrome")
	cmd.Flags().StringVar(&outputFile, "out", "", "write the job record to this file instead of stdout")
	cmd.Flags().StringVar(&jobID, "id", "", "id for the parsed job (generated when empty)")
	cmd.MarkFlagsMutuallyExclusive("in", "url")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}
