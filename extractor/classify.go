package extractor

import (
	"path/filepath"
	"strings"
)

// classHintFromName guesses document_type from filename tokens. It is a
// best-effort hint only: the metadata tagger (C2) may override it from the
// static document registry.
func classHintFromName(path string) string {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "faq") || strings.Contains(name, "preguntas"):
		return "faq"
	case strings.Contains(name, "resol"):
		return "resolution"
	case strings.Contains(name, "reglament"):
		return "regulation"
	case strings.Contains(name, "programa") || strings.Contains(name, "plan_"):
		return "program"
	default:
		return "other"
	}
}
