package render

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CellTexts returns the trimmed text content of every element matching
// selector, in document order.
func CellTexts(html, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	sel := doc.Find(selector)
	cells := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(s.Text()))
	})

	return cells, nil
}
