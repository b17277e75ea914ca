// Package ingestion reads resume documents from disk and returns their cleaned text.
package ingestion

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxPages is the number of PDF pages read when no limit is given.
const DefaultMaxPages = 3

// Format is a supported document format.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

var (
	// ErrUnsupportedFormat is returned for file extensions with no text extractor
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrNoText is returned when a document yields no text, e.g. a scanned PDF
	ErrNoText = errors.New("document contains no extractable text")
)

// Document is the cleaned text of one file.
type Document struct {
	Text     string
	Metadata *Metadata
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".text", "":
		return FormatText, nil
	case ".pdf":
		return FormatPDF, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads path, extracts its text and cleans it. PDFs are read up to maxPages
// pages; zero or a negative value means DefaultMaxPages.
func LoadFile(path string, maxPages int) (*Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := Load(data, format, maxPages)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Metadata.Source = path
	return doc, nil
}

// Load extracts and cleans the text of data in the given format.
func Load(data []byte, format Format, maxPages int) (*Document, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var (
		raw   string
		pages int
		err   error
	)
	switch format {
	case FormatText:
		raw = string(data)
	case FormatPDF:
		raw, pages, err = ExtractPDF(data, maxPages)
	case FormatHTML:
		raw, err = ExtractHTML(string(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	text := CleanText(raw)
	if text == "" {
		return nil, ErrNoText
	}

	meta := NewMetadata(text, "", format)
	meta.Pages = pages
	meta.Bytes = len(data)
	return &Document{Text: text, Metadata: meta}, nil
}
