// Package projects extracts project entries from the projects section of a resume.
package projects

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/segment"
	"github.com/jonathan/resume-extractor/internal/types"
)

const (
	maxHeaderWords     = 10
	maxParagraphParts  = 3
	maxParagraphLength = 150
)

// Draft is a project while its lines are still being collected.
type Draft struct {
	Name         string
	DateRange    string
	Technologies string
	Parts        []string
}

// Extract returns the projects listed under a projects header. Text without a projects
// section yields no projects.
func Extract(lib *patterns.Library, text string) []types.ProjectRecord {
	return ExtractFrom(lib, segment.Segment(lib, text))
}

// ExtractFrom is Extract over already segmented sections. The projects body is
// normalized before parsing.
func ExtractFrom(lib *patterns.Library, sections segment.Sections) []types.ProjectRecord {
	body, ok := sections.Get(types.SectionProjects)
	if !ok {
		return nil
	}
	body = Normalize(lib, body)

	var (
		drafts  []*Draft
		current *Draft
	)
	for _, entry := range splitEntries(lib, body) {
		lines := nonBlank(entry)
		if len(lines) == 0 {
			continue
		}

		rest := lines
		if isHeader(lib, lines[0]) {
			current = newDraft(lib, lines[0])
			drafts = append(drafts, current)
			rest = lines[1:]
		}
		if current == nil {
			continue
		}
		for _, line := range rest {
			current.add(lib, line)
		}
	}

	records := make([]types.ProjectRecord, 0, len(drafts))
	for _, d := range drafts {
		records = append(records, Finalize(lib, d))
	}
	return records
}

// Normalize rewrites leading bullet glyphs to "• " and collapses runs of spaces and tabs.
// Line breaks are kept.
func Normalize(lib *patterns.Library, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(lib.HorizontalSpace.ReplaceAllString(line, " "))
		if lib.BulletGlyph.MatchString(line) {
			line = "• " + lib.BulletGlyph.ReplaceAllString(line, "")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// splitEntries starts a new entry at every non-blank line whose next non-blank line looks
// like the start of project content.
func splitEntries(lib *patterns.Library, body string) [][]string {
	lines := strings.Split(body, "\n")

	var (
		entries [][]string
		current []string
	)
	for i, line := range lines {
		if len(current) > 0 && strings.TrimSpace(line) != "" && nextStartsContent(lib, lines[i+1:]) {
			entries = append(entries, current)
			current = nil
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		entries = append(entries, current)
	}
	return entries
}

func nextStartsContent(lib *patterns.Library, rest []string) bool {
	for _, l := range rest {
		if t := strings.TrimSpace(l); t != "" {
			return lib.ProjectEntryStart.MatchString(t)
		}
	}
	return false
}

func nonBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func isHeader(lib *patterns.Library, line string) bool {
	if len(strings.Fields(line)) > maxHeaderWords || strings.HasPrefix(line, "•") {
		return false
	}
	if r, _ := utf8.DecodeRuneInString(line); unicode.IsDigit(r) {
		return false
	}
	return !lib.ProjectHeaderLabel.MatchString(line)
}

// newDraft takes the name from the part of header before the first "•", "|" or ":".
// A date range anywhere in the header becomes the draft's date range.
func newDraft(lib *patterns.Library, header string) *Draft {
	name := header
	if loc := lib.ProjectNameSplit.FindStringIndex(header); loc != nil {
		name = header[:loc[0]]
	}
	name = strings.TrimSpace(name)

	d := &Draft{Name: name}
	if date := lib.ProjectDateRange.FindString(header); date != "" {
		d.DateRange = date
		d.Name = strings.TrimSpace(strings.ReplaceAll(name, date, ""))
	}
	return d
}

func (d *Draft) add(lib *patterns.Library, line string) {
	switch {
	case lib.ProjectLabel.MatchString(line):
		if _, after, ok := strings.Cut(line, ":"); ok {
			d.Technologies = strings.TrimSpace(after)
		}
	case strings.HasPrefix(line, "•"):
		d.Parts = append(d.Parts, strings.TrimSpace(strings.TrimPrefix(line, "•")))
	case len(d.Parts) > 0:
		d.Parts[len(d.Parts)-1] += " " + line
	default:
		d.Parts = append(d.Parts, line)
	}
}

// Finalize renders a draft. Fragments become sentences, grouped into paragraphs of at most
// three sentences or 150 characters, separated by a blank line.
func Finalize(lib *patterns.Library, d *Draft) types.ProjectRecord {
	var sentences []string
	if d.DateRange != "" {
		sentences = append(sentences, "Project duration: "+d.DateRange+".")
	}
	for _, part := range d.Parts {
		if lib.ProjectSkipFragment.MatchString(part) {
			continue
		}
		part = strings.TrimSpace(lib.Whitespace.ReplaceAllString(part, " "))
		if part == "" {
			continue
		}
		sentences = append(sentences, sentence(part))
	}

	var (
		paragraphs []string
		current    []string
	)
	for _, s := range sentences {
		if len(current) >= maxParagraphParts || (len(current) > 0 && joinedLength(current, s) > maxParagraphLength) {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
		current = append(current, s)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}

	technologies := d.Technologies
	if technologies != "" {
		technologies = strings.Trim(lib.TechnologySeparator.ReplaceAllString(technologies, ", "), ", ")
	}

	return types.ProjectRecord{
		Name:         d.Name,
		Description:  strings.TrimSpace(strings.Join(paragraphs, "\n\n")),
		Technologies: technologies,
	}
}

// joinedLength is the rune length of current and next joined by single spaces.
func joinedLength(current []string, next string) int {
	n := utf8.RuneCountInString(next)
	for _, s := range current {
		n += utf8.RuneCountInString(s) + 1
	}
	return n
}

func sentence(part string) string {
	r, size := utf8.DecodeRuneInString(part)
	part = string(unicode.ToUpper(r)) + part[size:]
	if !strings.HasSuffix(part, ".") && !strings.HasSuffix(part, "!") && !strings.HasSuffix(part, "?") {
		part += "."
	}
	return part
}
