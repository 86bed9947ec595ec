package entity

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// programDef is a known program/subject code with its full Spanish name
// (matched with flexible whitespace) and the title it grants, if any.
type programDef struct {
	code  string
	kind  Kind
	full  string // full name pattern fragment (words separated by \s+), empty if none
	alias string // literal full Spanish name, recorded as a match alias
	title string // "" if this program/subject does not grant a title
}

var knownPrograms = []programDef{
	{"CEIA", KindProgram, `Carrera\s+de\s+Especializaci[oó]n\s+en\s+Inteligencia\s+Artificial`, "Carrera de Especialización en Inteligencia Artificial", "Especialista en Inteligencia Artificial"},
	{"CESE", KindProgram, `Carrera\s+de\s+Especializaci[oó]n\s+en\s+Sistemas\s+Embebidos`, "Carrera de Especialización en Sistemas Embebidos", "Especialista en Sistemas Embebidos"},
	{"CEIoT", KindProgram, `Carrera\s+de\s+Especializaci[oó]n\s+en\s+Internet\s+de\s+las\s+Cosas`, "Carrera de Especialización en Internet de las Cosas", "Especialista en Internet de las Cosas"},
	{"MIA", KindProgram, `Maestr[ií]a\s+en\s+Inteligencia\s+Artificial`, "Maestría en Inteligencia Artificial", "Magister en Inteligencia Artificial"},
	{"MIAE", KindProgram, `Maestr[ií]a\s+en\s+Inteligencia\s+Artificial\s+Embebida`, "Maestría en Inteligencia Artificial Embebida", "Magister en Inteligencia Artificial Embebida"},
	{"MIoT", KindProgram, `Maestr[ií]a\s+en\s+Internet\s+de\s+las\s+Cosas`, "Maestría en Internet de las Cosas", "Magister en Internet de las Cosas"},
	{"MCB", KindProgram, `Maestr[ií]a\s+en\s+Ciencia\s+de\s+Datos`, "Maestría en Ciencia de Datos", "Magister en Ciencia de Datos y Bioestadística"},
	{"GdP", KindSubject, `Gesti[oó]n\s+de\s+Proyectos`, "Gestión de Proyectos", ""},
	{"GTI", KindSubject, `Gesti[oó]n\s+Tecnol[oó]gica\s+e\s+Innovaci[oó]n`, "Gestión Tecnológica e Innovación", ""},
	{"TTFA", KindSubject, `Taller\s+de\s+Trabajo\s+Final\s+A`, "Taller de Trabajo Final A", ""},
	{"TTFB", KindSubject, `Taller\s+de\s+Trabajo\s+Final\s+B`, "Taller de Trabajo Final B", ""},
}

// programPattern compiles to a word-boundary match of the code itself,
// or the full name with flexible whitespace, whichever appears.
func programPattern(code, full string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(code)
	if full == "" {
		return regexp.MustCompile(`(?i)\b` + escaped + `\b`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + escaped + `|` + full + `)\b`)
}

var institutionAliases = map[string][]string{
	"LSE":   {"lse", "laboratorio de sistemas embebidos"},
	"FIUBA": {"fiuba", "facultad de ingenieria", "facultad de ingeniería"},
	"UBA":   {"uba", "universidad de buenos aires"},
}

var processDictionary = map[string][]string{
	"inscripcion":          {"inscripci", "inscribi", "admisi", "postula"},
	"trabajo_final":        {"trabajo final", "tesis", "defensa"},
	"readmision":           {"readmisi", "reincorpor"},
	"baja":                 {"baja", "desistimiento"},
	"prorroga":             {"pr[oó]rroga", "extensi[oó]n de plazo"},
	"vinculacion_empresas": {"vinculaci[oó]n", "pr[aá]ctica profesional"},
}

var (
	emailPattern    = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.[\w]+`)
	articlePattern  = regexp.MustCompile(`(?i)Art\.?\s*\d+`)
	deadlinePattern = regexp.MustCompile(`(?i)(\d+)\s*(bimestres?|meses?|a[nñ]os?)\s*(corridos?)?`)
)

const articleContentCap = 500

// ExtractAll runs every extraction rule over text and returns a
// deduplicated entity list, stable in emission order.
func ExtractAll(text, sourceDocument string) []Entity {
	var out []Entity
	out = append(out, extractPrograms(text, sourceDocument)...)
	out = append(out, extractDeadlines(text, sourceDocument)...)
	out = append(out, extractContacts(text, sourceDocument)...)
	out = append(out, extractArticles(text, sourceDocument)...)
	out = append(out, extractProcesses(text, sourceDocument)...)
	out = append(out, extractInstitutions(text, sourceDocument)...)
	return Dedup(out)
}

func extractPrograms(text, doc string) []Entity {
	var out []Entity
	for _, p := range knownPrograms {
		if !programPattern(p.code, p.full).MatchString(text) {
			continue
		}
		props := map[string]any{}
		if p.title != "" {
			props["title"] = p.title
		}
		var aliases []string
		if p.alias != "" {
			aliases = []string{p.alias, p.code}
		}
		out = append(out, newEntityWithAliases(p.kind, p.code, doc, props, aliases))
	}
	return out
}

// extractDeadlines finds "<N> bimesters|months|years [corridos]" spans,
// storing the numeric value, unit, and a 100-char context window.
func extractDeadlines(text, doc string) []Entity {
	var out []Entity
	for _, loc := range deadlinePattern.FindAllStringSubmatchIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		groups := submatches(text, loc)
		value, _ := strconv.Atoi(groups[1])
		unit := normalizeUnit(groups[2])

		start := max(0, loc[0]-50)
		end := min(len(text), loc[1]+50)
		context := strings.TrimSpace(text[start:end])

		name := fmt.Sprintf("%d_%s", value, unit)
		out = append(out, newEntity(KindDeadline, name, doc, map[string]any{
			"value":   value,
			"unit":    unit,
			"context": context,
			"text":    strings.TrimSpace(match),
		}))
	}
	return out
}

func normalizeUnit(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "bimestre"):
		return "bimesters"
	case strings.HasPrefix(lower, "mes"):
		return "months"
	default:
		return "years"
	}
}

func submatches(text string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		s, e := loc[2*i], loc[2*i+1]
		if s < 0 || e < 0 {
			continue
		}
		out[i] = text[s:e]
	}
	return out
}

func extractContacts(text, doc string) []Entity {
	var out []Entity
	for _, email := range dedupStrings(emailPattern.FindAllString(text, -1)) {
		out = append(out, newEntity(KindContact, email, doc, nil))
	}
	return out
}

// extractArticles finds "Art. N" markers; the content of each article runs
// from its marker to the next article marker (or end of text), capped at
// articleContentCap characters.
func extractArticles(text, doc string) []Entity {
	locs := articlePattern.FindAllStringIndex(text, -1)
	var out []Entity
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		content := strings.TrimSpace(text[loc[0]:end])
		full := content
		if len(content) > articleContentCap {
			content = content[:articleContentCap]
		}
		name := strings.TrimSpace(text[loc[0]:loc[1]])
		out = append(out, newEntity(KindArticle, name, doc, map[string]any{
			"content":      content,
			"full_content": full,
		}))
	}
	return out
}

// extractProcesses emits a process entity the first time any of its
// keywords matches, per canonical process name.
func extractProcesses(text, doc string) []Entity {
	lower := strings.ToLower(text)
	processes := make([]string, 0, len(processDictionary))
	for process := range processDictionary {
		processes = append(processes, process)
	}
	sort.Strings(processes)

	var out []Entity
	for _, process := range processes {
		for _, kw := range processDictionary[process] {
			if regexp.MustCompile(kw).MatchString(lower) {
				out = append(out, newEntity(KindProcess, process, doc, nil))
				break
			}
		}
	}
	return out
}

func extractInstitutions(text, doc string) []Entity {
	lower := strings.ToLower(text)
	codes := make([]string, 0, len(institutionAliases))
	for code := range institutionAliases {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []Entity
	for _, code := range codes {
		aliases := institutionAliases[code]
		for _, alias := range aliases {
			if strings.Contains(lower, alias) {
				out = append(out, newEntityWithAliases(KindInstitution, code, doc, nil, append([]string{code}, aliases...)))
				break
			}
		}
	}
	return out
}

func dedupStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		key := strings.ToLower(it)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}
