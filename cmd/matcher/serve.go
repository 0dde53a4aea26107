package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/jonathan/talent-matcher/internal/server"
	"github.com/jonathan/talent-matcher/internal/server/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  `Start an HTTP server that exposes ranking and explanation endpoints plus Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rec, cfg, log, err := c.recommender(ctx, metrics.New(prometheus.DefaultRegisterer))
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close(); _ = log.Sync() }()

			rl := cfg.Server.RateLimit
			srv := server.New(rec, server.Config{
				Port:         cfg.Server.Port,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				RateLimit:    ratelimit.NewConfig(rl.Enabled, rl.DefaultLimit, rl.RankLimit, rl.ExplainLimit, rl.Whitelist),
			}, log)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().Int("port", 8080, "port to listen on")
	_ = c.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}
