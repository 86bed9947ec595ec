// Package extractor defines the pluggable document-extraction boundary.
// Extraction backends turn a document file on disk into pages of raw text
// plus any tables found, leaving cleaning, classification, and chunking to
// the rest of the pipeline.
package extractor

import "context"

// Page is a single page of extracted text, plus any tables found on it.
type Page struct {
	PageNo int
	Text   string
	Tables [][]string // each table flattened to row strings
}

// Result is what an Extractor produces from a document file.
type Result struct {
	Pages     []Page
	RawText   string // full document text, pages joined
	ClassHint string // best-effort document_type guess: resolution, faq, regulation, program, other
}

// Extractor can extract text/tables from one document format. Callers are
// not tied to a specific backend: a Registry selects one by file extension.
type Extractor interface {
	Extract(ctx context.Context, path string) (Result, error)
	SupportedFormats() []string
}
