// Package metadata implements the Metadata Tagger (C2): it merges the
// static per-document registry with content-detected program references,
// topic keywords, contact emails, and resolution numbers. It never calls
// an LLM — output is deterministic for identical input.
package metadata

import (
	"regexp"
	"strings"

	"github.com/fiuba-lse/consulta/chunker"
)

// DocumentMetadata is the tagger's per-document output, attached before
// chunking so the chunker can dispatch on DocumentType.
type DocumentMetadata struct {
	Filename         string
	DocumentType     chunker.DocumentType
	ProgramCodes     []string
	ProgramFullNames []string
	DegreeLevel      string
	Topics           []string
	ResolutionNumber string
	VersionDate      string
	ContactEmails    []string
}

// programPattern is a compiled regex matched against raw document text to
// detect a program code even when the registry entry doesn't name it (a
// program mentioned in passing inside another program's document).
type programPattern struct {
	code    string
	pattern *regexp.Regexp
}

var programPatterns = []programPattern{
	{"CEIA", regexp.MustCompile(`(?i)\b(?:CEIA|Carrera\s+de\s+Especializaci[oó]n\s+en\s+Inteligencia\s+Artificial)\b`)},
	{"CESE", regexp.MustCompile(`(?i)\b(?:CESE|Carrera\s+de\s+Especializaci[oó]n\s+en\s+Sistemas\s+Embebidos)\b`)},
	{"CEIoT", regexp.MustCompile(`(?i)\b(?:CEIoT|Carrera\s+de\s+Especializaci[oó]n\s+en\s+Internet\s+de\s+las\s+Cosas)\b`)},
	{"MIAE", regexp.MustCompile(`(?i)\b(?:MIAE|Maestr[ií]a\s+en\s+Inteligencia\s+Artificial\s+Embebida)\b`)},
	{"MIA", regexp.MustCompile(`(?i)\b(?:MIA|Maestr[ií]a\s+en\s+Inteligencia\s+Artificial)\b`)},
	{"MIoT", regexp.MustCompile(`(?i)\b(?:MIoT|Maestr[ií]a\s+en\s+Internet\s+de\s+las\s+Cosas)\b`)},
	{"MCB", regexp.MustCompile(`(?i)\b(?:MCB|Maestr[ií]a\s+en\s+Ciencia\s+de\s+Datos)\b`)},
	{"TTFA", regexp.MustCompile(`(?i)\bTTFA\b`)},
	{"TTFB", regexp.MustCompile(`(?i)\bTTFB\b`)},
	{"GdP", regexp.MustCompile(`(?i)\bGdP\b`)},
	{"GTI", regexp.MustCompile(`(?i)\bGTI\b`)},
}

// topicPattern ties a topic tag to the keyword patterns that detect it.
type topicPattern struct {
	topic    string
	keywords []*regexp.Regexp
}

var topicPatterns = []topicPattern{
	{"inscripcion", compileAll("inscripci", "inscribi", "admisi", "postula")},
	{"requisitos", compileAll("requisit", "necesit", "condici", "requiere")},
	{"plazos", compileAll("plazo", "vencimient", "fecha l[ií]mite", "pr[oó]rroga")},
	{"trabajo_final", compileAll("trabajo final", "tesis", "defensa", "director", "jurado")},
	{"materias_optativas", compileAll("optativa", "electiva")},
	{"asistencia", compileAll("asistencia", "inasistencia", "ausenci")},
	{"calificacion", compileAll("calificaci", "nota", "aprobaci", "desaprobaci", "aplazo")},
	{"baja", compileAll("baja", "desistimiento")},
	{"readmision", compileAll("readmisi", "reincorpor")},
	{"plan_de_estudios", compileAll("plan de estudio", "plan de la carrera", "estructura curricular")},
	{"correlatividades", compileAll("correlativa", "prerrequisit")},
	{"gestion_proyectos", compileAll("gesti[oó]n de proyectos", "gdp")},
	{"vinculacion", compileAll("vinculaci", "empresa", "industria")},
}

func compileAll(keywords ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		out[i] = regexp.MustCompile("(?i)" + kw)
	}
	return out
}

var (
	emailPattern      = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.[\w]+`)
	resolutionPattern = regexp.MustCompile(`RESCS-\d{4}-\d+-E-UBA-REC`)
)

// Tagger attaches registry and content-derived metadata to documents and
// chunks.
type Tagger struct {
	registry Registry
}

// New returns a Tagger backed by registry.
func New(registry Registry) *Tagger {
	return &Tagger{registry: registry}
}

// TagDocument combines the registry entry (if any) for filename with
// content-detected programs, topics, emails, and resolution number.
func (t *Tagger) TagDocument(filename, text, classHint string) DocumentMetadata {
	entry, _ := t.registry.lookup(filename)

	md := DocumentMetadata{
		Filename:         filename,
		DocumentType:     documentType(entry.DocumentType, classHint),
		ProgramCodes:     append([]string{}, entry.ProgramCodes...),
		ProgramFullNames: append([]string{}, entry.ProgramFullNames...),
		DegreeLevel:      entry.DegreeLevel,
		Topics:           append([]string{}, entry.Topics...),
		VersionDate:      entry.Version,
		ContactEmails:    extractEmails(text),
		ResolutionNumber: extractResolution(text),
	}

	for _, topic := range extractTopics(text) {
		if !contains(md.Topics, topic) {
			md.Topics = append(md.Topics, topic)
		}
	}
	for _, code := range extractPrograms(text) {
		if !contains(md.ProgramCodes, code) {
			md.ProgramCodes = append(md.ProgramCodes, code)
		}
	}

	return md
}

// TagChunk enriches a single chunk's metadata with chunk-local topics,
// mentioned programs, and emails, layered on top of the document-level
// metadata already carried by the chunk (e.g. Question, for qa-pair
// chunks). It does not overwrite fields the chunker already set.
func (t *Tagger) TagChunk(chunkText string, doc DocumentMetadata, existing chunker.Metadata) chunker.Metadata {
	existing.Topics = extractTopics(chunkText)
	existing.ProgramCodes = append([]string{}, doc.ProgramCodes...)
	if mentioned := extractPrograms(chunkText); len(mentioned) > 0 {
		existing.MentionedPrograms = mentioned
	}
	if emails := extractEmails(chunkText); len(emails) > 0 {
		existing.ContactEmails = emails
	}
	return existing
}

func extractEmails(text string) []string {
	return dedup(emailPattern.FindAllString(text, -1))
}

func extractResolution(text string) string {
	return resolutionPattern.FindString(text)
}

func extractTopics(text string) []string {
	var found []string
	for _, tp := range topicPatterns {
		for _, kw := range tp.keywords {
			if kw.MatchString(text) {
				found = append(found, tp.topic)
				break
			}
		}
	}
	return found
}

func extractPrograms(text string) []string {
	var found []string
	for _, pp := range programPatterns {
		if pp.pattern.MatchString(text) {
			found = append(found, pp.code)
		}
	}
	return found
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
