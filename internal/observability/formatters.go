// Package observability provides metrics and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-extractor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// PrintStage outputs a one-line progress note.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStage(stage, message string) {
	fmt.Fprintf(p.out, "  → %-10s %s\n", stage, message)
}

// PrintRecord outputs every section of an analyzed resume.
func (p *Printer) PrintRecord(record *types.ResumeRecord) {
	if record == nil {
		return
	}
	p.PrintMetadata(record)
	p.PrintExperience(record.Experience)
	p.PrintEducation(record.Education)
	p.PrintProjects(record.Projects)
	p.PrintSkills(record.Skills, record.Tags)
}

// PrintMetadata outputs the candidate's identity fields.
func (p *Printer) PrintMetadata(record *types.ResumeRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", orDash(record.Metadata.Name)))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", orDash(record.Metadata.Email)))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", orDash(record.Metadata.Phone)))
	if !record.ProcessedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Analyzed: %s\n", record.ProcessedAt.Format("2006-01-02 15:04:05")))
	}

	p.printBox("CANDIDATE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExperience outputs the first experience entries with their durations.
func (p *Printer) PrintExperience(entries []types.ExperienceRecord) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total entries: %d\n\n", len(entries)))

	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := entries[i]
		sb.WriteString(fmt.Sprintf("#%d  %s @ %s\n", i+1, orDash(e.Role), orDash(e.Company)))
		if e.Duration != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", e.Duration))
		}
		if first, _, _ := strings.Cut(e.Description, "\n"); first != "" {
			sb.WriteString(fmt.Sprintf("    • %s\n", first))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more entries", len(entries)-maxItemsToShow))
	}

	p.printBox("EXPERIENCE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEducation outputs the education records.
func (p *Printer) PrintEducation(entries []types.EducationRecord) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := entries[i]
		sb.WriteString(fmt.Sprintf("• %s\n", e.Degree))
		if e.Institution != "" {
			sb.WriteString(fmt.Sprintf("  %s (%s)\n", e.Institution, e.Year))
		}
	}
	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(entries)-maxItemsToShow))
	}

	p.printBox("EDUCATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProjects outputs project names and technologies.
func (p *Printer) PrintProjects(entries []types.ProjectRecord) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := entries[i]
		sb.WriteString(fmt.Sprintf("• %s\n", e.Name))
		if e.Technologies != "" {
			sb.WriteString(fmt.Sprintf("  [%s]\n", e.Technologies))
		}
	}
	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(entries)-maxItemsToShow))
	}

	p.printBox("PROJECTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkills outputs the filtered skills and the generated tags.
func (p *Printer) PrintSkills(skills, tags []string) {
	if len(skills) == 0 && len(tags) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Skills (%d): %s\n", len(skills), strings.Join(skills, ", ")))
	sb.WriteString(fmt.Sprintf("Tags:       %s", strings.Join(tags, ", ")))

	p.printBox("SKILLS & TAGS", sb.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
