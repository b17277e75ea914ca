package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/db"
	"github.com/jonathan/resume-extractor/internal/logger"
	"github.com/jonathan/resume-extractor/internal/observability"
	"github.com/jonathan/resume-extractor/internal/server"
	"github.com/jonathan/resume-extractor/internal/server/ratelimit"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for analyzing resumes and querying the skill registry.

Persistence is enabled when DATABASE_URL (or database_url) is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	if servePort > 0 {
		settings.Port = servePort
	}

	metrics := observability.NewMetrics()
	analyzer, cleanup, err := buildAnalyzer(ctx, settings, analyzerDeps{metrics: metrics, logger: logger.Logger})
	if err != nil {
		return err
	}
	defer cleanup()

	opts := server.Options{
		Addr:     settings.Addr(),
		Analyzer: analyzer,
		Metrics:  metrics,
		Logger:   logger.Logger,
	}

	if settings.DatabaseURL != "" {
		database, err := db.Connect(ctx, settings.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return err
		}
		opts.Store = database
	} else {
		logger.Warn().Msg("DATABASE_URL not set; analyses will not be stored")
	}

	limitCfg := ratelimit.NewConfig(settings.RateLimitRPS, settings.RateLimitBurst)
	limitCfg.ApplyLists(os.Getenv)
	opts.Limiter = ratelimit.NewLimiter(limitCfg)

	srv, err := server.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
