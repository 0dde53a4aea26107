package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/jonathan/talent-matcher/internal/logger"
	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/jonathan/talent-matcher/internal/observability"
	"github.com/jonathan/talent-matcher/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "matcher"

	outputText = "text"
	outputJSON = "json"
)

// cli carries state shared by every command of one invocation
type cli struct {
	v       *viper.Viper
	cfgFile string
	output  string
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           app,
		Short:         "Rank candidates for jobs and jobs for candidates",
		Long:          "matcher extracts interpretable features from candidate and job records, filters ineligible pairs, and ranks the pool with an interpretable or learned scorer.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.out = cmd.OutOrStdout()
			if c.output != outputText && c.output != outputJSON {
				return fmt.Errorf("--output must be %q or %q, got %q", outputText, outputJSON, c.output)
			}
			return config.Bind(c.v, c.cfgFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.StringVarP(&c.output, "output", "o", outputText, "result format: text or json")
	flags.BoolP("debug", "d", false, "verbose/debug logging")
	flags.Bool("log-json", false, "json format for logging")
	flags.String("vocab", "", "vocabulary file overriding the built-in tables")

	_ = c.v.BindPFlag("log.debug", flags.Lookup("debug"))
	_ = c.v.BindPFlag("log.json", flags.Lookup("log-json"))
	_ = c.v.BindPFlag("vocab_file", flags.Lookup("vocab"))

	rootCmd.AddCommand(
		newRankCandidatesCmd(c),
		newRankJobsCmd(c),
		newExplainCmd(c),
		newFeaturesCmd(c),
		newEvaluateCmd(c),
		newParseJobCmd(c),
		newServeCmd(c),
	)
	return rootCmd
}

// setup decodes the configuration and builds the logger
func (c *cli) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.FromViper(c.v)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

// recommender builds the pipeline. The caller must Close it.
func (c *cli) recommender(ctx context.Context, m *metrics.Metrics) (*pipeline.Recommender, *config.Config, *zap.Logger, error) {
	cfg, log, err := c.setup()
	if err != nil {
		return nil, nil, nil, err
	}
	rec, err := pipeline.New(ctx, cfg, pipeline.Options{Logger: log, Metrics: m})
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("failed to initialise recommender: %w", err)
	}
	return rec, cfg, log, nil
}

// emit writes data as JSON, or hands the printer to text
func (c *cli) emit(data any, text func(p *observability.Printer)) error {
	if c.output == outputJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return nil
	}
	text(observability.NewPrinter(c.out))
	return nil
}
