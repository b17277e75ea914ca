package skills

import (
	"testing"

	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/stretchr/testify/assert"
)

func TestCandidates(t *testing.T) {
	lib := patterns.MustDefault()
	text := `Jane Doe
Built Django services.

Technical Skills: Python, C++, Node.js
Docker / Kubernetes

Education
BSc`

	got := Candidates(lib, text)
	assert.Equal(t, []string{"Python", "C++", "Node.js", "Docker", "Kubernetes", "Django"}, got)
}

func TestCandidates_KeywordsOnly(t *testing.T) {
	lib := patterns.MustDefault()

	got := Candidates(lib, "Wrote JavaScript and some java")
	assert.Equal(t, []string{"Java", "JavaScript"}, got)
}

func TestCandidates_Empty(t *testing.T) {
	lib := patterns.MustDefault()
	assert.Empty(t, Candidates(lib, "nothing relevant"))
}
