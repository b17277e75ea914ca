package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes where a document's text came from
type Metadata struct {
	Source    string `json:"source"`
	Format    Format `json:"format"`
	Pages     int    `json:"pages,omitempty"` // Pages read, PDF only
	Bytes     int    `json:"bytes"`           // Size of the source file
	Timestamp string `json:"timestamp"`       // RFC3339 format
	Hash      string `json:"hash"`            // SHA256 hex digest of the cleaned text
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content, source string, format Format) *Metadata {
	return &Metadata{
		Source:    source,
		Format:    format,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
