package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/db"
	"github.com/jonathan/resume-extractor/internal/ingestion"
	"github.com/jonathan/resume-extractor/internal/logger"
	"github.com/jonathan/resume-extractor/internal/observability"
	"github.com/jonathan/resume-extractor/internal/pipeline"
	"github.com/jonathan/resume-extractor/internal/schemas"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a resume file into a structured ResumeRecord JSON",
	Long: `Extract text from a resume (.txt, .md, .pdf or .html) and analyze it into a ResumeRecord.

PDFs are read up to --max-pages pages. The record is written as JSON to --out or stdout.
With --store the analysis is also saved to the database (DATABASE_URL or database_url).`,
	RunE: runAnalyze,
}

var (
	analyzeInput    string
	analyzeOutput   string
	analyzeID       string
	analyzeMaxPages int
	analyzeMeta     string
	analyzeStore    bool
	analyzeVerbose  bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "in", "i", "", "Path to the resume file")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	analyzeCmd.Flags().StringVar(&analyzeID, "id", "", "Document id (defaults to the input file name without extension)")
	analyzeCmd.Flags().IntVar(&analyzeMaxPages, "max-pages", 0, "PDF pages to read (overrides max_pages)")
	analyzeCmd.Flags().StringVar(&analyzeMeta, "meta", "", "Path to write the source metadata JSON (format, pages, hash)")
	analyzeCmd.Flags().BoolVar(&analyzeStore, "store", false, "Save the analysis to the database")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print stage progress and a summary to stderr")

	_ = analyzeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(analyzeCmd)
}

// documentID derives an id from a file name: "cv/jane-doe.pdf" becomes "jane-doe".
func documentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := logger.WithContext(context.Background())
	stderr := cmd.ErrOrStderr()

	maxPages := settings.MaxPages
	if analyzeMaxPages > 0 {
		maxPages = analyzeMaxPages
	}
	docID := analyzeID
	if docID == "" {
		docID = documentID(analyzeInput)
	}
	if analyzeStore && settings.DatabaseURL == "" {
		return fmt.Errorf("--store requires DATABASE_URL or database_url")
	}

	// Step 1: Load text
	doc, err := ingestion.LoadFile(analyzeInput, maxPages)
	if err != nil {
		return fmt.Errorf("failed to load resume: %w", err)
	}
	logger.Debug().
		Str("source", doc.Metadata.Source).
		Str("format", string(doc.Metadata.Format)).
		Int("pages", doc.Metadata.Pages).
		Str("hash", doc.Metadata.Hash).
		Msg("resume text loaded")
	if analyzeMeta != "" {
		metaBytes, err := doc.Metadata.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if err := os.WriteFile(analyzeMeta, metaBytes, 0644); err != nil {
			return fmt.Errorf("failed to write metadata file: %w", err)
		}
	}

	// Step 2: Analyze
	var printer *observability.Printer
	var progress pipeline.ProgressCallback
	if analyzeVerbose {
		printer = observability.NewPrinter(stderr)
		progress = func(e pipeline.ProgressEvent) { printer.PrintStage(e.Stage, e.Message) }
	}

	analyzer, cleanup, err := buildAnalyzer(ctx, settings, analyzerDeps{logger: logger.Logger, progress: progress})
	if err != nil {
		return err
	}
	defer cleanup()

	record, err := analyzer.Analyze(ctx, docID, doc.Text)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if printer != nil {
		printer.PrintRecord(record)
	}

	// Step 3: Write and validate output
	jsonBytes, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := schemas.ValidateRecord(jsonBytes); err != nil {
		return fmt.Errorf("generated record does not validate against schema: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), analyzeOutput, jsonBytes); err != nil {
		return err
	}

	// Step 4: Store
	if analyzeStore {
		database, err := db.Connect(ctx, settings.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		id, err := database.SaveAnalysis(ctx, docID, record)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stderr, "Stored analysis %d for %s\n", id, docID)
	}

	return nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(w, string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
