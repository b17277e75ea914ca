package skills

import (
	"strings"

	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/segment"
	"github.com/jonathan/resume-extractor/internal/types"
)

// Candidates returns raw skill tokens: every token of the skills section, then each
// keyword term that occurs in text (case-sensitive). Duplicates are removed.
func Candidates(lib *patterns.Library, text string) []string {
	return CandidatesFrom(lib, segment.Segment(lib, text), text)
}

// CandidatesFrom is Candidates over sections already segmented from text.
func CandidatesFrom(lib *patterns.Library, sections segment.Sections, text string) []string {
	var raw []string
	if body, ok := sections.Get(types.SectionSkills); ok {
		raw = append(raw, lib.SkillToken.FindAllString(body, -1)...)
	}
	for _, term := range lib.KeywordTerms {
		if strings.Contains(text, term) {
			raw = append(raw, term)
		}
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
