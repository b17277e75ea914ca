// Package patterns loads the versioned pattern table used by every extractor.
//
// The table lives in patterns.json next to this file and is embedded at build time.
// It is validated against patterns.schema.json before any regex is compiled.
package patterns

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/resume-extractor/internal/schemas"
	"github.com/jonathan/resume-extractor/internal/types"
)

//go:embed patterns.json
var defaultTable []byte

//go:embed patterns.schema.json
var tableSchema []byte

// Table is the raw, uncompiled form of patterns.json.
type Table struct {
	Version      string                     `json:"version"`
	Sections     map[types.Section][]string `json:"sections"`
	Patterns     map[string]string          `json:"patterns"`
	KeywordTerms []string                   `json:"keyword_terms"`
	Skills       struct {
		Aliases    map[string]string `json:"aliases"`
		Vocabulary []string          `json:"vocabulary"`
	} `json:"skills"`
}

// Library is a compiled pattern table. It is immutable after Load.
type Library struct {
	Version string

	EntryBullet         *regexp.Regexp
	DescriptionBullet   *regexp.Regexp
	CaptureBullet       *regexp.Regexp
	ExperienceDuration  *regexp.Regexp
	Degree              *regexp.Regexp
	LeadingIn           *regexp.Regexp
	Year                *regexp.Regexp
	EducationDegree     *regexp.Regexp
	EducationSchool     *regexp.Regexp
	Email               *regexp.Regexp
	Phone               *regexp.Regexp
	Link                *regexp.Regexp
	NameRun             *regexp.Regexp
	NameStrip           *regexp.Regexp
	CleanNameStrip      *regexp.Regexp
	BulletGlyph         *regexp.Regexp
	ProjectEntryStart   *regexp.Regexp
	ProjectHeaderLabel  *regexp.Regexp
	ProjectLabel        *regexp.Regexp
	ProjectNameSplit    *regexp.Regexp
	ProjectDateRange    *regexp.Regexp
	ProjectSkipFragment *regexp.Regexp
	TechnologySeparator *regexp.Regexp
	SkillToken          *regexp.Regexp
	SkillStrip          *regexp.Regexp
	HorizontalSpace     *regexp.Regexp
	Whitespace          *regexp.Regexp

	// KeywordTerms are matched case-sensitively anywhere in a document.
	KeywordTerms []string

	headers    []sectionHeader
	synonyms   map[types.Section][]string
	aliases    map[string]string
	vocabulary map[string]struct{}
}

type sectionHeader struct {
	section types.Section
	re      *regexp.Regexp
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
	defaultErr  error
)

// Default returns the library compiled from the embedded table. It is built once.
func Default() (*Library, error) {
	defaultOnce.Do(func() {
		defaultLib, defaultErr = Load(defaultTable)
	})
	return defaultLib, defaultErr
}

// MustDefault is like Default but panics on error. The embedded table is covered by tests.
func MustDefault() *Library {
	lib, err := Default()
	if err != nil {
		panic(fmt.Sprintf("patterns: %v", err))
	}
	return lib
}

// Load validates and compiles a pattern table.
func Load(data []byte) (*Library, error) {
	if err := schemas.ValidateBytes(tableSchema, data); err != nil {
		return nil, &LoadError{Message: "pattern table does not match schema", Cause: err}
	}

	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, &LoadError{Message: "failed to parse pattern table", Cause: err}
	}
	return Compile(&table)
}

// Compile builds a Library from an already parsed table.
func Compile(table *Table) (*Library, error) {
	lib := &Library{
		Version:      table.Version,
		KeywordTerms: append([]string(nil), table.KeywordTerms...),
		synonyms:     make(map[types.Section][]string, len(types.Sections)),
		aliases:      make(map[string]string, len(table.Skills.Aliases)),
		vocabulary:   make(map[string]struct{}, len(table.Skills.Vocabulary)),
	}

	targets := map[string]**regexp.Regexp{
		"entry_bullet":          &lib.EntryBullet,
		"description_bullet":    &lib.DescriptionBullet,
		"capture_bullet":        &lib.CaptureBullet,
		"experience_duration":   &lib.ExperienceDuration,
		"degree":                &lib.Degree,
		"leading_in":            &lib.LeadingIn,
		"year":                  &lib.Year,
		"education_degree":      &lib.EducationDegree,
		"education_school":      &lib.EducationSchool,
		"email":                 &lib.Email,
		"phone":                 &lib.Phone,
		"link":                  &lib.Link,
		"name_run":              &lib.NameRun,
		"name_strip":            &lib.NameStrip,
		"clean_name_strip":      &lib.CleanNameStrip,
		"bullet_glyph":          &lib.BulletGlyph,
		"project_entry_start":   &lib.ProjectEntryStart,
		"project_header_label":  &lib.ProjectHeaderLabel,
		"project_label":         &lib.ProjectLabel,
		"project_name_split":    &lib.ProjectNameSplit,
		"project_date_range":    &lib.ProjectDateRange,
		"project_skip_fragment": &lib.ProjectSkipFragment,
		"technology_separator":  &lib.TechnologySeparator,
		"skill_token":           &lib.SkillToken,
		"skill_strip":           &lib.SkillStrip,
		"horizontal_space":      &lib.HorizontalSpace,
		"whitespace":            &lib.Whitespace,
	}

	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		expr, ok := table.Patterns[name]
		if !ok {
			return nil, &LoadError{Message: fmt.Sprintf("pattern %q is missing", name)}
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &LoadError{Message: fmt.Sprintf("pattern %q does not compile", name), Cause: err}
		}
		*targets[name] = re
	}

	for _, section := range types.Sections {
		synonyms := table.Sections[section]
		if len(synonyms) == 0 {
			return nil, &LoadError{Message: fmt.Sprintf("section %q has no header synonyms", section)}
		}
		re, err := headerRegexp(synonyms)
		if err != nil {
			return nil, &LoadError{Message: fmt.Sprintf("section %q header does not compile", section), Cause: err}
		}
		lib.synonyms[section] = append([]string(nil), synonyms...)
		lib.headers = append(lib.headers, sectionHeader{section: section, re: re})
	}

	for from, to := range table.Skills.Aliases {
		lib.aliases[strings.ToLower(from)] = to
	}
	for _, term := range table.Skills.Vocabulary {
		lib.vocabulary[strings.ToLower(term)] = struct{}{}
	}

	return lib, nil
}

// headerRegexp matches a line holding only a header, optionally prefixed by up to three
// '#' markers. Inline content is accepted only after a colon and captured in group 1.
func headerRegexp(synonyms []string) (*regexp.Regexp, error) {
	alternatives := make([]string, 0, len(synonyms))
	for _, s := range synonyms {
		words := strings.Fields(s)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alternatives = append(alternatives, strings.Join(words, `\s+`))
	}
	sort.SliceStable(alternatives, func(i, j int) bool { return len(alternatives[i]) > len(alternatives[j]) })

	expr := `(?i)^\s*(?:#{1,3}\s*)?(?:` + strings.Join(alternatives, "|") + `)\s*(?::\s*(.*?))?\s*$`
	return regexp.Compile(expr)
}

// MatchHeader reports whether line is a section header. inline holds any content that
// followed a colon on the same line.
func (l *Library) MatchHeader(line string) (section types.Section, inline string, ok bool) {
	for _, h := range l.headers {
		if m := h.re.FindStringSubmatch(line); m != nil {
			return h.section, m[1], true
		}
	}
	return "", "", false
}

// Synonyms returns the header synonyms of section.
func (l *Library) Synonyms(section types.Section) []string {
	return append([]string(nil), l.synonyms[section]...)
}

// Alias returns the canonical spelling for a lower-cased skill token.
func (l *Library) Alias(lower string) (string, bool) {
	v, ok := l.aliases[lower]
	return v, ok
}

// Aliases returns a copy of the alias table.
func (l *Library) Aliases() map[string]string {
	out := make(map[string]string, len(l.aliases))
	for k, v := range l.aliases {
		out[k] = v
	}
	return out
}

// InVocabulary reports whether skill belongs to the controlled vocabulary, ignoring case.
func (l *Library) InVocabulary(skill string) bool {
	_, ok := l.vocabulary[strings.ToLower(skill)]
	return ok
}

// Vocabulary returns the controlled vocabulary, sorted.
func (l *Library) Vocabulary() []string {
	out := make([]string, 0, len(l.vocabulary))
	for term := range l.vocabulary {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}
