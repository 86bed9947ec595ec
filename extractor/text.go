package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// TextExtractor handles plain-text (.txt) source files.
type TextExtractor struct{}

func (t *TextExtractor) SupportedFormats() []string { return []string{"txt"} }

func (t *TextExtractor) Extract(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("extractor: reading text file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	return Result{
		Pages:     []Page{{PageNo: 1, Text: text}},
		RawText:   text,
		ClassHint: classHintFromName(path),
	}, nil
}
