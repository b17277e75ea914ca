// Package experience extracts employment entries from resume text.
package experience

import (
	"strings"

	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/segment"
	"github.com/jonathan/resume-extractor/internal/types"
)

// DefaultRole is used when an entry header has neither " at " nor " - ".
const DefaultRole = "Professional Role"

// Extract returns one record per entry of the experience section. Without an experience
// header the whole text is scanned.
func Extract(lib *patterns.Library, text string) []types.ExperienceRecord {
	return ExtractFrom(lib, segment.Segment(lib, text), text)
}

// ExtractFrom is Extract over sections already segmented from text.
func ExtractFrom(lib *patterns.Library, sections segment.Sections, text string) []types.ExperienceRecord {
	block := sections.BodyOr(types.SectionExperience, text)

	var records []types.ExperienceRecord
	for _, entry := range SplitEntries(lib, block) {
		if rec, ok := parseEntry(lib, entry); ok {
			records = append(records, rec)
		}
	}
	return records
}

// SplitEntries cuts block into entries. A new entry starts at a non-blank line that is not
// itself a bullet and whose next non-blank line is a bullet. A line holding only a date
// range stays with the entry before it.
func SplitEntries(lib *patterns.Library, block string) [][]string {
	lines := strings.Split(block, "\n")

	var (
		entries [][]string
		current []string
	)
	for i, line := range lines {
		if len(current) > 0 && startsEntry(lib, lines, i) && !isDateOnly(lib, line) {
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

func startsEntry(lib *patterns.Library, lines []string, i int) bool {
	if strings.TrimSpace(lines[i]) == "" || isBullet(lib, lines[i]) {
		return false
	}
	for _, next := range lines[i+1:] {
		if strings.TrimSpace(next) == "" || isDateOnly(lib, next) {
			continue
		}
		return isBullet(lib, next)
	}
	return false
}

func isDateOnly(lib *patterns.Library, line string) bool {
	return lib.ExperienceDuration.MatchString(line) && stripDuration(lib, line) == ""
}

func isBullet(lib *patterns.Library, line string) bool {
	return lib.EntryBullet.MatchString(line) || lib.DescriptionBullet.MatchString(strings.TrimSpace(line))
}

func parseEntry(lib *patterns.Library, entry []string) (types.ExperienceRecord, bool) {
	lines := make([]string, 0, len(entry))
	for _, l := range entry {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) == 0 {
		return types.ExperienceRecord{}, false
	}

	var rec types.ExperienceRecord
	body := lines
	if !isBullet(lib, lines[0]) {
		rec.Role, rec.Company = parseHeader(lib, lines[0])
		body = lines[1:]
	}

	if m := lib.ExperienceDuration.FindStringSubmatch(strings.Join(lines, "\n")); m != nil {
		rec.Duration = m[1] + " - " + m[2]
	}
	rec.Description = strings.Join(description(lib, body), "\n")
	return rec, true
}

// parseHeader tries " at ", then " - ", then treats the whole line as the company.
// A date range inside the header is not part of role or company, and a header holding
// nothing else is empty.
func parseHeader(lib *patterns.Library, header string) (role, company string) {
	header = stripDuration(lib, header)
	if header == "" {
		return "", ""
	}

	for _, sep := range []string{" at ", " - "} {
		if parts := strings.Split(header, sep); len(parts) > 1 {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}
	}
	return DefaultRole, header
}

func stripDuration(lib *patterns.Library, line string) string {
	line = strings.ReplaceAll(lib.ExperienceDuration.ReplaceAllString(line, ""), "()", "")
	return strings.TrimRight(strings.TrimSpace(line), " ,|-–—")
}

// description prefers "•" and numbered lines. Without any, capture starts at the first
// bulleted line and keeps every following line.
func description(lib *patterns.Library, body []string) []string {
	var out []string
	for _, l := range body {
		if m := lib.DescriptionBullet.FindStringSubmatch(l); m != nil {
			out = append(out, strings.TrimSpace(m[1]))
		}
	}
	if len(out) > 0 {
		return out
	}

	capturing := false
	for _, l := range body {
		if lib.CaptureBullet.MatchString(l) {
			capturing = true
			l = lib.CaptureBullet.ReplaceAllString(l, "")
		}
		if capturing && l != "" {
			out = append(out, l)
		}
	}
	return out
}
