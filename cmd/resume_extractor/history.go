package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the stored analyses of a resume, newest first",
	RunE:  runHistory,
}

var (
	historyID    string
	historyLimit int
)

func init() {
	historyCmd.Flags().StringVar(&historyID, "id", "", "Document id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of analyses")
	_ = historyCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if settings.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL or database_url is required")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, settings.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	analyses, err := database.ListAnalyses(ctx, historyID, historyLimit)
	if err != nil {
		return err
	}
	if len(analyses) == 0 {
		return fmt.Errorf("no analyses found for %s", historyID)
	}

	data, err := json.MarshalIndent(analyses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
