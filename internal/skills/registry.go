package skills

import (
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/resume-extractor/internal/patterns"
)

// Registry records which vocabulary skills each document mentioned. The global set only
// grows. A Registry is safe for concurrent use; create one per process or per test.
type Registry struct {
	lib *patterns.Library

	mu        sync.RWMutex
	global    map[string]struct{}
	documents map[string]map[string]struct{}
}

// DocumentSkills is a document id with its tracked skills.
type DocumentSkills struct {
	ID     string   `json:"resume_id"`
	Skills []string `json:"skills"`
}

// NewRegistry creates an empty registry that normalizes with lib.
func NewRegistry(lib *patterns.Library) *Registry {
	return &Registry{
		lib:       lib,
		global:    make(map[string]struct{}),
		documents: make(map[string]map[string]struct{}),
	}
}

// Track normalizes raw, keeps the tokens found in the controlled vocabulary and records
// them for docID. A second call for the same docID replaces its set. The kept skills are
// returned in normalized order.
func (r *Registry) Track(docID string, raw []string) []string {
	normalized := Normalize(r.lib, raw)

	kept := make([]string, 0, len(normalized))
	for _, s := range normalized {
		if r.lib.InVocabulary(s) {
			kept = append(kept, s)
		}
	}

	doc := make(map[string]struct{}, len(kept))
	r.mu.Lock()
	for _, s := range kept {
		r.global[s] = struct{}{}
		doc[s] = struct{}{}
	}
	r.documents[docID] = doc
	r.mu.Unlock()

	return kept
}

// Filtered returns the skills of docID that are in the global set, sorted.
// Unknown documents yield an empty slice.
func (r *Registry) Filtered(docID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc := r.documents[docID]
	out := make([]string, 0, len(doc))
	for s := range doc {
		if _, ok := r.global[s]; ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Global returns every skill tracked so far, sorted.
func (r *Registry) Global() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.global)
}

// Documents returns a snapshot of every tracked document, sorted by id.
func (r *Registry) Documents() []DocumentSkills {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]DocumentSkills, 0, len(r.documents))
	for id, doc := range r.documents {
		out = append(out, DocumentSkills{ID: id, Skills: sortedKeys(doc)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MatchAll returns the documents that hold every one of required, compared without case.
// An empty requirement matches nothing.
func (r *Registry) MatchAll(required []string) []DocumentSkills {
	want := make([]string, 0, len(required))
	for _, s := range required {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			want = append(want, s)
		}
	}
	if len(want) == 0 {
		return []DocumentSkills{}
	}

	out := []DocumentSkills{}
	for _, doc := range r.Documents() {
		have := make(map[string]struct{}, len(doc.Skills))
		for _, s := range doc.Skills {
			have[strings.ToLower(s)] = struct{}{}
		}
		if containsAll(have, want) {
			out = append(out, doc)
		}
	}
	return out
}

func containsAll(have map[string]struct{}, want []string) bool {
	for _, s := range want {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
