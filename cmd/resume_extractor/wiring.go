package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-extractor/internal/config"
	"github.com/jonathan/resume-extractor/internal/entities"
	"github.com/jonathan/resume-extractor/internal/llm"
	"github.com/jonathan/resume-extractor/internal/observability"
	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/pipeline"
)

// loadSettings reads the optional config file, applies environment overrides and
// defaults, and validates the result.
func loadSettings(path string, getenv func(string) string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// newLLMClient is replaced in tests.
var newLLMClient = func(ctx context.Context, apiKey string) (llm.Client, error) {
	return llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
}

// buildBackends creates the configured entity backends. The returned cleanup releases
// the LLM client, if any.
func buildBackends(ctx context.Context, cfg *config.Config) ([]entities.Backend, func(), error) {
	var backends []entities.Backend
	cleanup := func() {}

	if cfg.NEREndpoint != "" {
		classifier, err := entities.NewTokenClassifier(entities.TokenClassifierConfig{
			Endpoint:    cfg.NEREndpoint,
			APIKey:      cfg.NERAPIKey,
			Timeout:     cfg.NERTimeout(),
			RetryCount:  2,
			Aggregation: "simple",
		})
		if err != nil {
			return nil, cleanup, err
		}
		backends = append(backends, classifier.Backend())
	}

	if cfg.LLMTagger {
		client, err := newLLMClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create LLM client: %w", err)
		}
		cleanup = func() { _ = client.Close() }
		backends = append(backends, entities.NewLLMTagger(client).Backend())
	}

	return backends, cleanup, nil
}

// analyzerDeps carries the optional collaborators of buildAnalyzer.
type analyzerDeps struct {
	metrics  *observability.Metrics
	logger   zerolog.Logger
	progress pipeline.ProgressCallback
}

// buildAnalyzer wires the pattern library, entity backends and analyzer options from cfg.
func buildAnalyzer(ctx context.Context, cfg *config.Config, deps analyzerDeps) (*pipeline.Analyzer, func(), error) {
	lib, err := patterns.Default()
	if err != nil {
		return nil, nil, err
	}

	backends, cleanup, err := buildBackends(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithStrictTags(cfg.StrictTagsEnabled()),
		pipeline.WithEducationYears(cfg.EducationYears),
		pipeline.WithLogger(deps.logger),
		pipeline.WithProgress(deps.progress),
	}
	if len(backends) > 0 {
		recOpts := []entities.Option{
			entities.WithTimeout(cfg.NERTimeout()),
			entities.WithLogger(deps.logger),
		}
		if deps.metrics != nil {
			recOpts = append(recOpts, entities.WithFailureRecorder(deps.metrics))
		}
		opts = append(opts, pipeline.WithReconciler(entities.NewReconciler(backends, recOpts...)))
	}
	if deps.metrics != nil {
		opts = append(opts, pipeline.WithMetrics(deps.metrics))
	}

	return pipeline.NewAnalyzer(lib, opts...), cleanup, nil
}
