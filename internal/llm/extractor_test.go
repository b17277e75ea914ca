package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt(t *testing.T) {
	schema := ExtractionSchema{
		Name:         "Entities",
		Description:  "Tag entities.",
		Instructions: []string{"Copy text verbatim."},
		Fields: []SchemaField{
			{Name: "entities", Type: `[{"label": "string", "text": "string"}]`, Description: "all entities", Required: true},
			{Name: "note"},
		},
	}

	prompt := BuildExtractionPrompt(schema, "Resume text: Jane")

	assert.True(t, strings.HasPrefix(prompt, "Tag entities."))
	assert.Contains(t, prompt, `"entities": [{"label": "string", "text": "string"}] (required) // all entities,`)
	assert.Contains(t, prompt, `"note": "string"`)
	assert.Contains(t, prompt, "- Copy text verbatim.")
	assert.True(t, strings.HasSuffix(prompt, "Resume text: Jane\n"))
}

func TestBuildExtractionPrompt_NoInstructions(t *testing.T) {
	prompt := BuildExtractionPrompt(ExtractionSchema{Description: "d"}, "x")
	assert.NotContains(t, prompt, "IMPORTANT")
}
