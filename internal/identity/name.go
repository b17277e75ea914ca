// Package identity resolves the candidate's name and contact details.
package identity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/types"
)

const (
	// Unknown is returned by CleanName when nothing usable remains.
	Unknown = "Unknown"

	organizationNameLimit = 14
)

// ResolveName reads the run of capitalized words at the start of the first line. At
// least two are required; otherwise the name is "". The run ends at the first word that
// is not capitalized or at punctuation, so "Jane Doe, Engineer" yields "Jane Doe".
// Periods are dropped: "John A. Smith" becomes "John A Smith". Inner capitals,
// apostrophes and hyphens are kept ("McDonald", "O'Neil", "Mary-Jane").
func ResolveName(lib *patterns.Library, text string) string {
	first, _, _ := strings.Cut(strings.TrimLeftFunc(text, unicode.IsSpace), "\n")

	m := lib.NameRun.FindStringSubmatch(first)
	if m == nil {
		return ""
	}
	return strings.Join(strings.Fields(lib.NameStrip.ReplaceAllString(m[1], "")), " ")
}

// CleanName tidies a free-form name candidate. It keeps letters, spaces and hyphens and
// returns the result when it has two or more words. Failing that, an email candidate
// with a dotted local part ("jane.doe@x.com") becomes "Jane Doe". Otherwise Unknown.
func CleanName(lib *patterns.Library, candidate string) string {
	cleaned := strings.Join(strings.Fields(lib.CleanNameStrip.ReplaceAllString(candidate, "")), " ")
	if len(strings.Fields(cleaned)) >= 2 {
		return cleaned
	}

	if local, _, ok := strings.Cut(candidate, "@"); ok && strings.Contains(local, ".") {
		var parts []string
		for _, p := range strings.Split(local, ".") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, capitalize(p))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}

	return Unknown
}

// NameStrategy proposes a name. ok is false when the strategy has nothing to offer.
type NameStrategy func(text string, entities types.EntityMap) (name string, ok bool)

// NameChain tries strategies in order and returns the first name offered, or "".
type NameChain []NameStrategy

// DefaultNameChain uses the leading capitalized words, then the first organization
// entity truncated to 14 characters.
func DefaultNameChain(lib *patterns.Library) NameChain {
	return NameChain{
		func(text string, _ types.EntityMap) (string, bool) {
			name := ResolveName(lib, text)
			return name, name != ""
		},
		OrganizationFallback,
	}
}

// Resolve runs the chain.
func (c NameChain) Resolve(text string, entities types.EntityMap) string {
	for _, strategy := range c {
		if name, ok := strategy(text, entities); ok {
			return name
		}
	}
	return ""
}

// OrganizationFallback offers the first organization entity, cut to 14 characters.
func OrganizationFallback(_ string, entities types.EntityMap) (string, bool) {
	org := entities.First(types.GroupOrganization)
	if org == "" {
		return "", false
	}
	if utf8.RuneCountInString(org) > organizationNameLimit {
		org = string([]rune(org)[:organizationNameLimit])
	}
	return org, true
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
