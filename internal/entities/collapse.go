// Package entities runs the named-entity taggers and merges their output into one map.
package entities

import (
	"strings"

	"github.com/jonathan/resume-extractor/internal/types"
)

// RawSpan is a labeled piece of text exactly as a backend reported it.
type RawSpan struct {
	Label string
	Text  string
}

// LabelMap maps backend-specific labels to entity groups.
type LabelMap map[string]types.EntityGroup

// Collapse maps raw spans to entity groups. Spans with an unknown label are skipped without
// ending the current span. A span starting with continuationPrefix is glued to the previous
// span if that span has the same group; otherwise it is dropped.
func Collapse(raw []RawSpan, labels LabelMap, continuationPrefix string) []types.EntitySpan {
	var out []types.EntitySpan

	for _, span := range raw {
		group, ok := labels[span.Label]
		if !ok {
			continue
		}

		if continuationPrefix != "" && strings.HasPrefix(span.Text, continuationPrefix) {
			if n := len(out); n > 0 && out[n-1].Group == group {
				out[n-1].Text += strings.TrimPrefix(span.Text, continuationPrefix)
			}
			continue
		}

		text := strings.TrimSpace(span.Text)
		if text == "" {
			continue
		}
		out = append(out, types.EntitySpan{Text: text, Group: group})
	}

	return out
}

// Merge concatenates spans per group in argument order. Duplicates are kept.
func Merge(sources ...[]types.EntitySpan) types.EntityMap {
	merged := make(types.EntityMap)
	for _, spans := range sources {
		for _, span := range spans {
			merged[span.Group] = append(merged[span.Group], span.Text)
		}
	}
	return merged
}

// Reconcile merges the spans of two taggers, A before B.
func Reconcile(a, b []types.EntitySpan) types.EntityMap {
	return Merge(a, b)
}
