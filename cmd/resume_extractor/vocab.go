package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/types"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Print the skill vocabulary, skill aliases and section header synonyms",
	RunE:  runVocab,
}

var vocabJSON bool

func init() {
	vocabCmd.Flags().BoolVar(&vocabJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(vocabCmd)
}

// vocabulary is the printable view of the pattern library.
type vocabulary struct {
	Version  string                     `json:"version"`
	Skills   []string                   `json:"skills"`
	Aliases  map[string]string          `json:"aliases"`
	Sections map[types.Section][]string `json:"sections"`
}

func describeLibrary(lib *patterns.Library) vocabulary {
	v := vocabulary{
		Version:  lib.Version,
		Skills:   lib.Vocabulary(),
		Aliases:  lib.Aliases(),
		Sections: make(map[types.Section][]string, len(types.Sections)),
	}
	for _, section := range types.Sections {
		v.Sections[section] = lib.Synonyms(section)
	}
	return v
}

func runVocab(cmd *cobra.Command, _ []string) error {
	lib, err := patterns.Default()
	if err != nil {
		return err
	}
	v := describeLibrary(lib)

	if vocabJSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	return printVocabulary(cmd.OutOrStdout(), v)
}

func printVocabulary(w io.Writer, v vocabulary) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pattern library %s\n\n", v.Version)

	sb.WriteString("Sections:\n")
	for _, section := range types.Sections {
		fmt.Fprintf(&sb, "  %-12s %s\n", section, strings.Join(v.Sections[section], ", "))
	}

	fmt.Fprintf(&sb, "\nSkills (%d):\n", len(v.Skills))
	for _, s := range v.Skills {
		fmt.Fprintf(&sb, "  %s\n", s)
	}

	from := make([]string, 0, len(v.Aliases))
	for k := range v.Aliases {
		from = append(from, k)
	}
	sort.Strings(from)
	fmt.Fprintf(&sb, "\nAliases (%d):\n", len(from))
	for _, k := range from {
		fmt.Fprintf(&sb, "  %s -> %s\n", k, v.Aliases[k])
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
