package ingestion

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "p, div, section, article, header, footer, h1, h2, h3, h4, h5, h6, ul, ol, tr, table, pre"

// ExtractHTML returns the visible text of an HTML resume with one line per block element.
// List items are rendered as "• " bullets.
func ExtractHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, template").Remove()

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n• ")
		s.AppendHtml("\n")
	})
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml("\n")
		s.AfterHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	lines := strings.Split(body.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}
