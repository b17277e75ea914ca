package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a ResumeRecord JSON file against the record schema",
	RunE:  runValidate,
}

var validateJSON string

func init() {
	validateCmd.Flags().StringVar(&validateJSON, "json", "", "Path to the JSON file to validate")
	_ = validateCmd.MarkFlagRequired("json")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	err := schemas.ValidateRecordFile(validateJSON)
	if err == nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s\n", validateJSON)
		return nil
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		out := cmd.ErrOrStderr()
		_, _ = fmt.Fprintf(out, "Validation failed: %s\n", validateJSON)
		for _, fe := range validationErr.Errors {
			_, _ = fmt.Fprintf(out, "  - %s: %s\n", fe.Field, fe.Message)
		}
	}
	return err
}
