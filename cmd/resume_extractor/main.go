// Package main provides the entry point for the resume extractor CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/config"
	"github.com/jonathan/resume-extractor/internal/logger"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	// settings is the merged configuration, available once PersistentPreRunE ran.
	settings *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "resume_extractor",
	Short: "Resume Extractor CLI and HTTP API Server",
	Long:  "Resume Extractor turns the text of a resume into a structured record with identity, experience, education, projects, skills and tags.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadSettings(configPath, os.Getenv)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if logFormat != "" {
			cfg.LogFormat = logFormat
		}
		logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
		settings = cfg
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (environment variables override file values)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json or pretty")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
