// Package tags derives a short tag list from an assembled resume record.
package tags

import (
	"errors"
	"strings"

	"github.com/jonathan/resume-extractor/internal/types"
)

// MaxTags is the most tags Generate returns.
const MaxTags = 5

const (
	maxSkillSources      = 3
	maxExperienceSources = 2
)

// ErrMissingRole is returned when one of the experience entries used as a source has no role.
var ErrMissingRole = errors.New("experience entry has no role")

// Generate builds up to MaxTags unique tags from the first three skills, the first word of
// the role of the first two experience entries and the first word of the first degree.
// When there are too many, every source keeps its first tag before the rest are filled in.
func Generate(record *types.ResumeRecord) ([]string, error) {
	experience := head(record.Experience, maxExperienceSources)
	for _, exp := range experience {
		if strings.TrimSpace(exp.Role) == "" {
			return nil, ErrMissingRole
		}
	}

	seen := make(map[string]struct{})
	add := func(list []string, tag string) []string {
		if tag == "" {
			return list
		}
		if _, ok := seen[tag]; ok {
			return list
		}
		seen[tag] = struct{}{}
		return append(list, tag)
	}

	var skills, roles, degrees []string
	for _, s := range head(record.Skills, maxSkillSources) {
		skills = add(skills, strings.TrimSpace(s))
	}
	for _, exp := range experience {
		roles = add(roles, firstWord(exp.Role))
	}
	if len(record.Education) > 0 {
		degrees = add(degrees, firstWord(record.Education[0].Degree))
	}

	return pick([][]string{skills, roles, degrees}, MaxTags), nil
}

// pick takes the first entry of every source, then fills up to limit in source order.
// The result keeps source order.
func pick(sources [][]string, limit int) []string {
	taken := make([]int, len(sources))
	total := 0
	for i, src := range sources {
		if len(src) > 0 && total < limit {
			taken[i] = 1
			total++
		}
	}
	for i, src := range sources {
		for taken[i] < len(src) && total < limit {
			taken[i]++
			total++
		}
	}

	out := make([]string, 0, total)
	for i, src := range sources {
		out = append(out, src[:taken[i]]...)
	}
	return out
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
