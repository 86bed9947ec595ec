package extractor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts page text from PDF files using ledongthuc/pdf,
// ordering text by visual position (top-to-bottom) rather than PDF object
// order, since the latter can put headings after the body text they label.
type PDFExtractor struct{}

func (p *PDFExtractor) SupportedFormats() []string { return []string{"pdf"} }

func (p *PDFExtractor) Extract(ctx context.Context, path string) (Result, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("extractor: opening PDF: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]Page, 0, total)
	var raw strings.Builder

	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := extractPageTextOrdered(page)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{PageNo: i, Text: text})
		raw.WriteString(text)
		raw.WriteString("\n\n")
	}

	return Result{
		Pages:     pages,
		RawText:   strings.TrimSpace(raw.String()),
		ClassHint: classHintFromName(path),
	}, nil
}

// extractPageTextOrdered groups a page's text elements into visual lines by
// Y proximity, preserving content-stream order within a line, then sorts
// lines top-to-bottom so the result follows reading order.
func extractPageTextOrdered(page pdf.Page) (string, error) {
	content := page.Content()
	if len(content.Text) == 0 {
		return page.GetPlainText(nil)
	}

	const lineTolerance = 3.0
	type visualLine struct {
		y   float64
		buf strings.Builder
	}

	var lines []*visualLine
	var cur *visualLine
	for _, t := range content.Text {
		if cur == nil || math.Abs(t.Y-cur.y) > lineTolerance {
			lines = append(lines, &visualLine{y: t.Y})
			cur = lines[len(lines)-1]
		}
		cur.buf.WriteString(t.S)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	var parts []string
	for _, l := range lines {
		if text := strings.TrimSpace(l.buf.String()); text != "" {
			parts = append(parts, text)
		}
	}

	result := strings.Join(parts, "\n")
	if strings.TrimSpace(result) == "" {
		return page.GetPlainText(nil)
	}
	return result, nil
}
