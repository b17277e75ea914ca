package entities

import (
	"context"
	"encoding/json"

	"github.com/jonathan/resume-extractor/internal/llm"
	"github.com/jonathan/resume-extractor/internal/prompts"
	"github.com/jonathan/resume-extractor/internal/types"
)

// LLMTaggerName identifies the LLM backend in logs and metrics.
const LLMTaggerName = "llm-tagger"

// LLMTaggerLabels are the spaCy-style labels the prompt asks for.
var LLMTaggerLabels = LabelMap{
	"PERSON": types.GroupPerson,
	"ORG":    types.GroupOrganization,
	"GPE":    types.GroupLocation,
	"LOC":    types.GroupLocation,
	"DATE":   types.GroupDate,
}

// LLMTagger asks a generative model to label entities.
type LLMTagger struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMTagger creates a tagger that uses the lite tier of client.
func NewLLMTagger(client llm.Client) *LLMTagger {
	return &LLMTagger{client: client, tier: llm.TierLite}
}

// Backend wraps the tagger with its label table. LLM output has no sub-word continuations.
func (t *LLMTagger) Backend() Backend {
	return Backend{Name: LLMTaggerName, Tagger: t, Labels: LLMTaggerLabels}
}

type llmEntities struct {
	Entities []struct {
		Label string `json:"label"`
		Text  string `json:"text"`
	} `json:"entities"`
}

// EntitySchema is the extraction schema sent to the model.
func EntitySchema() llm.ExtractionSchema {
	return llm.ExtractionSchema{
		Name:        "Entities",
		Description: prompts.MustGet("entities.json", "entity-tagger-description"),
		Instructions: []string{
			prompts.MustGet("entities.json", "entity-tagger-labels"),
			"List entities in the order they appear in the text.",
			"Return ONLY the JSON object, no markdown.",
		},
		Fields: []llm.SchemaField{
			{
				Name:        "entities",
				Type:        `[{"label": "PERSON|ORG|GPE|LOC|DATE", "text": "string"}]`,
				Description: "every entity found",
				Required:    true,
			},
		},
	}
}

// BuildPrompt renders the entity prompt for text.
func BuildPrompt(text string) string {
	input := prompts.Format(prompts.MustGet("entities.json", "entity-tagger-input"), map[string]string{"Text": text})
	return llm.BuildExtractionPrompt(EntitySchema(), input)
}

// Tag sends text to the model and decodes the returned entity list.
func (t *LLMTagger) Tag(ctx context.Context, text string) ([]RawSpan, error) {
	raw, err := t.client.GenerateJSON(ctx, BuildPrompt(text), t.tier)
	if err != nil {
		return nil, &BackendError{Backend: LLMTaggerName, Message: "generation failed", Cause: err}
	}

	var parsed llmEntities
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &parsed); err != nil {
		return nil, &BackendError{Backend: LLMTaggerName, Message: "invalid JSON response", Cause: err}
	}

	spans := make([]RawSpan, 0, len(parsed.Entities))
	for _, e := range parsed.Entities {
		spans = append(spans, RawSpan{Label: e.Label, Text: e.Text})
	}
	return spans, nil
}
