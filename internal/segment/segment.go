// Package segment splits resume text into its named sections.
package segment

import (
	"strings"

	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/types"
)

// Sections maps a section to its body text. Absent sections are not present as keys.
type Sections map[types.Section]string

// Get returns the body of section and whether the section was found.
func (s Sections) Get(section types.Section) (string, bool) {
	body, ok := s[section]
	return body, ok
}

// Segment splits text line by line. A header line starts a section, which runs up to
// the next header of any section or the end of the text. When a section header appears
// more than once only the first occurrence is kept; later bodies are discarded.
func Segment(lib *patterns.Library, text string) Sections {
	sections := make(Sections)

	var (
		current types.Section
		body    []string
		open    bool
	)

	flush := func() {
		if !open {
			return
		}
		if _, seen := sections[current]; !seen {
			sections[current] = strings.Trim(strings.Join(body, "\n"), "\n")
		}
		body = nil
		open = false
	}

	for _, line := range strings.Split(text, "\n") {
		if section, inline, ok := lib.MatchHeader(line); ok {
			flush()
			current = section
			open = true
			if inline != "" {
				body = append(body, inline)
			}
			continue
		}
		if open {
			body = append(body, line)
		}
	}
	flush()

	return sections
}

// BodyOr returns the body of section, or text when the section is absent.
func (s Sections) BodyOr(section types.Section, text string) string {
	if body, ok := s[section]; ok {
		return body
	}
	return text
}

// BodyOrText returns the body of section, or the whole text when the section is absent.
func BodyOrText(lib *patterns.Library, text string, section types.Section) string {
	return Segment(lib, text).BodyOr(section, text)
}
