package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor extracts tabular annexes (fee schedules, course tables)
// attached to administrative resolutions.
type XLSXExtractor struct{}

func (x *XLSXExtractor) SupportedFormats() []string { return []string{"xlsx", "xls"} }

func (x *XLSXExtractor) Extract(ctx context.Context, path string) (Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("extractor: opening XLSX: %w", err)
	}
	defer f.Close()

	var pages []Page
	var raw strings.Builder

	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		var text strings.Builder
		fmt.Fprintf(&text, "%s\n", sheet)
		for _, row := range rows {
			text.WriteString(strings.Join(row, " | "))
			text.WriteString("\n")
		}
		pages = append(pages, Page{PageNo: i + 1, Text: text.String(), Tables: rows})
		raw.WriteString(text.String())
		raw.WriteString("\n")
	}

	if len(pages) == 0 {
		return Result{}, fmt.Errorf("extractor: no data found in %s", path)
	}

	return Result{
		Pages:     pages,
		RawText:   strings.TrimSpace(raw.String()),
		ClassHint: classHintFromName(path),
	}, nil
}
