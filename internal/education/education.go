// Package education turns education entries into degree and institution records.
package education

import (
	"strings"

	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/segment"
	"github.com/jonathan/resume-extractor/internal/types"
)

const (
	// DefaultDegree is used when an entry has no recognizable degree.
	DefaultDegree = "Degree"
	// DefaultYear is written to every record by Extract, and by ExtractWithYears when an
	// entry holds no year.
	DefaultYear = "4 years"
)

// Candidates collects education entries from the education section, or from the whole
// text when there is none. Degree phrases come first, rendered "<degree> in <field>",
// then institution names. Matches never cross a line.
func Candidates(lib *patterns.Library, text string) []string {
	return CandidatesFrom(lib, segment.Segment(lib, text), text)
}

// CandidatesFrom is Candidates over sections already segmented from text.
func CandidatesFrom(lib *patterns.Library, sections segment.Sections, text string) []string {
	found := candidates(lib, sections.BodyOr(types.SectionEducation, text))
	out := make([]string, 0, len(found))
	for _, c := range found {
		out = append(out, c.entry)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type candidate struct {
	entry string
	line  string
}

func candidates(lib *patterns.Library, block string) []candidate {
	lines := strings.Split(block, "\n")

	var out []candidate
	for _, line := range lines {
		for _, m := range lib.EducationDegree.FindAllStringSubmatch(line, -1) {
			field := strings.TrimSpace(m[2])
			if field == "" {
				continue
			}
			out = append(out, candidate{entry: m[1] + " in " + field, line: line})
		}
	}
	for _, line := range lines {
		for _, school := range lib.EducationSchool.FindAllString(line, -1) {
			out = append(out, candidate{entry: strings.TrimSpace(school), line: line})
		}
	}
	return out
}

// Extract builds one record per entry and then discards the first record.
// The institution is the entry with every degree match and a leading "in " removed.
func Extract(lib *patterns.Library, entries []string) []types.EducationRecord {
	return extract(lib, entries, func(int) string { return DefaultYear })
}

// ExtractWithYears is Extract over Candidates(lib, text) with the year read from the line
// each entry came from. Lines without a year get DefaultYear.
func ExtractWithYears(lib *patterns.Library, text string) []types.EducationRecord {
	return ExtractWithYearsFrom(lib, segment.Segment(lib, text), text)
}

// ExtractWithYearsFrom is ExtractWithYears over sections already segmented from text.
func ExtractWithYearsFrom(lib *patterns.Library, sections segment.Sections, text string) []types.EducationRecord {
	found := candidates(lib, sections.BodyOr(types.SectionEducation, text))
	entries := make([]string, len(found))
	for i, c := range found {
		entries[i] = c.entry
	}
	return extract(lib, entries, func(i int) string {
		if year := Year(lib, found[i].line); year != "" {
			return year
		}
		return DefaultYear
	})
}

func extract(lib *patterns.Library, entries []string, yearOf func(int) string) []types.EducationRecord {
	records := make([]types.EducationRecord, 0, len(entries))
	for i, entry := range entries {
		degree := strings.TrimSpace(lib.Degree.FindString(entry))
		if degree == "" {
			degree = DefaultDegree
		}

		institution := strings.TrimSpace(lib.Degree.ReplaceAllString(entry, ""))
		institution = strings.TrimSpace(lib.LeadingIn.ReplaceAllString(institution, ""))

		records = append(records, types.EducationRecord{
			Degree:      degree,
			Institution: institution,
			Year:        yearOf(i),
		})
	}

	if len(records) == 0 {
		return nil
	}
	return records[1:]
}

// Year returns the first year between 1900 and 2099 in entry, or "".
func Year(lib *patterns.Library, entry string) string {
	return lib.Year.FindString(entry)
}
