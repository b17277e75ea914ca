// Package skills normalizes skill tokens and tracks the skills seen per document.
package skills

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-extractor/internal/patterns"
)

// Normalize cleans, aliases and re-cases raw skill tokens. The result has no two entries
// that differ only by case and is sorted case-insensitively.
func Normalize(lib *patterns.Library, raw []string) []string {
	byKey := make(map[string]string, len(raw))
	for _, s := range raw {
		canonical, ok := normalizeOne(lib, s)
		if !ok {
			continue
		}
		key := strings.ToLower(canonical)
		if existing, seen := byKey[key]; !seen || canonical < existing {
			byKey[key] = canonical
		}
	}

	out := make([]string, 0, len(byKey))
	for _, v := range byKey {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}

// NormalizeName normalizes a single token. It returns "" for tokens that are dropped.
func NormalizeName(lib *patterns.Library, s string) string {
	canonical, _ := normalizeOne(lib, s)
	return canonical
}

func normalizeOne(lib *patterns.Library, s string) (string, bool) {
	clean := lib.SkillStrip.ReplaceAllString(s, "")
	clean = strings.ToLower(strings.Join(strings.Fields(clean), " "))
	if utf8.RuneCountInString(clean) < 2 {
		return "", false
	}
	if alias, ok := lib.Alias(clean); ok {
		clean = alias
	}
	return recase(clean), true
}

// recase title-cases all-caps tokens longer than two characters ("HTML" -> "Html") and
// capitalizes the first segment of dotted names ("node.js" -> "Node.js").
func recase(s string) string {
	if strings.ToUpper(s) == s && utf8.RuneCountInString(s) > 2 {
		return title(s)
	}
	if first, rest, ok := strings.Cut(s, "."); ok {
		return title(first) + "." + rest
	}
	return s
}

// title upper-cases the first letter of every run of letters and lower-cases the rest.
func title(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inWord := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if inWord {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			inWord = true
		} else {
			inWord = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
