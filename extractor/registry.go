package extractor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Registry dispatches a file path to the Extractor registered for its
// extension.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry returns a Registry with the native PDF, XLSX, and plain-text
// backends registered.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	for _, e := range []Extractor{&PDFExtractor{}, &XLSXExtractor{}, &TextExtractor{}} {
		for _, f := range e.SupportedFormats() {
			r.extractors[f] = e
		}
	}
	return r
}

// Register adds or overrides the backend for a format.
func (r *Registry) Register(format string, e Extractor) {
	r.extractors[format] = e
}

// For returns the Extractor registered for path's extension.
func (r *Registry) For(path string) (Extractor, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	e, ok := r.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("extractor: no backend for format %q", ext)
	}
	return e, nil
}
