package ingestion

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF returns the plain text of the first maxPages pages and the number of pages read.
func ExtractPDF(data []byte, maxPages int) (string, int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	total := r.NumPage()
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	var sb strings.Builder
	read := 0
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", read, fmt.Errorf("failed to read PDF page %d: %w", i, err)
		}
		read++
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), read, nil
}
