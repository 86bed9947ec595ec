package metadata

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fiuba-lse/consulta/chunker"
)

// DocumentEntry is one row of the static per-document registry.
type DocumentEntry struct {
	ProgramCodes     []string `yaml:"program_codes"`
	ProgramFullNames []string `yaml:"program_full_names"`
	DegreeLevel      string   `yaml:"degree_level"`
	DocumentType     string   `yaml:"document_type"`
	Topics           []string `yaml:"topics"`
	Version          string   `yaml:"version,omitempty"`
}

// Registry is the document registry: per-document overrides and program
// aliases loaded from YAML rather than compiled in.
type Registry struct {
	Documents map[string]DocumentEntry `yaml:"documents"`
	Aliases   map[string]string        `yaml:"aliases"`
}

// Default returns a minimal built-in registry used when no registry file
// is configured or found on disk. It is intentionally small: the shipped
// config/documents.yaml is the registry a real deployment should load.
func Default() Registry {
	return Registry{
		Documents: map[string]DocumentEntry{},
		Aliases:   map[string]string{},
	}
}

// LoadRegistryFile reads a YAML registry file. A missing file is not an
// error: it yields Default() unchanged, matching config.LoadFile's
// missing-file convention.
func LoadRegistryFile(path string) (Registry, error) {
	reg := Default()
	if path == "" {
		return reg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return reg, nil
	}
	if err != nil {
		return Registry{}, err
	}
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return Registry{}, err
	}
	return reg, nil
}

// lookup finds the registry entry for filename using exact, then
// substring, then alias matching, in that order.
func (r Registry) lookup(filename string) (DocumentEntry, bool) {
	if e, ok := r.Documents[filename]; ok {
		return e, true
	}

	lower := strings.ToLower(filename)
	for name, e := range r.Documents {
		nameLower := strings.ToLower(name)
		if strings.Contains(lower, nameLower) || strings.Contains(nameLower, lower) {
			return e, true
		}
	}

	for alias, canonical := range r.Aliases {
		if strings.Contains(lower, alias) {
			if e, ok := r.Documents[canonical]; ok {
				return e, true
			}
		}
	}

	return DocumentEntry{}, false
}

// documentType maps the registry's free-text document_type onto the
// chunker's closed DocumentType set, falling back to classHint.
func documentType(entryType string, classHint string) chunker.DocumentType {
	switch entryType {
	case "resolution":
		return chunker.DocResolution
	case "faq":
		return chunker.DocFAQ
	case "regulation":
		return chunker.DocRegulation
	case "program":
		return chunker.DocProgram
	}
	switch classHint {
	case "faq":
		return chunker.DocFAQ
	case "regulation":
		return chunker.DocRegulation
	case "resolution":
		return chunker.DocResolution
	case "program":
		return chunker.DocProgram
	}
	return chunker.DocOther
}
