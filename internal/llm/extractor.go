package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes a structured extraction task for the model.
type ExtractionSchema struct {
	Name         string
	Description  string
	Instructions []string
	Fields       []SchemaField
}

// SchemaField is one top-level key of the expected JSON answer.
type SchemaField struct {
	Name        string
	Type        string // JSON type hint shown to the model, e.g. `["string"]`
	Description string
	Required    bool
}

// BuildExtractionPrompt renders schema followed by the input text.
func BuildExtractionPrompt(schema ExtractionSchema, input string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\nReturn ONLY valid JSON matching this structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		sb.WriteString(fmt.Sprintf("  %q: %s", field.Name, typeHint))
		if field.Required {
			sb.WriteString(" (required)")
		}
		if field.Description != "" {
			sb.WriteString(" // " + field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")

	if len(schema.Instructions) > 0 {
		sb.WriteString("\nIMPORTANT:\n")
		for _, line := range schema.Instructions {
			sb.WriteString("- " + line + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(input)
	sb.WriteString("\n")
	return sb.String()
}
