// Package schemas holds the JSON Schemas for the artifacts the extractor produces.
package schemas

import "embed"

// ResumeRecordFile is the file name of the resume record schema.
const ResumeRecordFile = "resume_record.schema.json"

//go:embed *.schema.json
var files embed.FS

// Read returns the raw content of an embedded schema file.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists the embedded schema files.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
