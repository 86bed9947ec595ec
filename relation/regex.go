package relation

import (
	"regexp"
	"strings"

	"github.com/fiuba-lse/consulta/entity"
)

var (
	prerequisitePattern = regexp.MustCompile(`(?i)para\s+(.+?)\s+.*?es\s+necesario\s+(.+?)[\.\n]`)
	requisitePattern    = regexp.MustCompile(`(?i)requisito\s+para\s+(.+?):\s*(.+?)[\.\n]`)
)

// regexAxioms applies free-text regex patterns, resolving each captured
// span against the known entity set by substring match.
func regexAxioms(entities []entity.Entity, text, sourceDocument string) []Relation {
	var out []Relation
	out = append(out, prerequisiteMatches(entities, text, prerequisitePattern)...)
	out = append(out, prerequisiteMatches(entities, text, requisitePattern)...)
	out = append(out, articleRegulatesProcess(entities)...)
	return out
}

// prerequisiteMatches resolves both captured spans of pattern against
// known entities and, when both resolve, emits Y is_prerequisite_of X.
func prerequisiteMatches(entities []entity.Entity, text string, pattern *regexp.Regexp) []Relation {
	var out []Relation
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		if len(m) < 3 {
			continue
		}
		x, okX := resolveName(m[1], entities)
		y, okY := resolveName(m[2], entities)
		if !okX || !okY || x.ID == y.ID {
			continue
		}
		out = append(out, Relation{Source: y.ID, Target: x.ID, Kind: KindIsPrerequisiteOf, Hint: strings.TrimSpace(m[0])})
	}
	return out
}

// resolveName finds the known entity (program or subject) whose Name
// occurs in span, preferring the longest match.
func resolveName(span string, entities []entity.Entity) (entity.Entity, bool) {
	lower := strings.ToLower(span)
	var best entity.Entity
	found := false
	for _, e := range entities {
		if e.Kind != entity.KindProgram && e.Kind != entity.KindSubject {
			continue
		}
		if strings.Contains(lower, strings.ToLower(e.Name)) {
			if !found || len(e.Name) > len(best.Name) {
				best = e
				found = true
			}
		}
	}
	return best, found
}

// articleRegulatesProcess emits a regulates edge from each article
// entity to every process entity whose canonical name is mentioned
// within that article's content.
func articleRegulatesProcess(entities []entity.Entity) []Relation {
	var out []Relation
	for _, article := range entities {
		if article.Kind != entity.KindArticle {
			continue
		}
		content, _ := article.Properties["full_content"].(string)
		lower := strings.ToLower(content)
		for _, process := range entities {
			if process.Kind != entity.KindProcess {
				continue
			}
			needle := strings.ReplaceAll(process.Name, "_", " ")
			idx := strings.Index(lower, needle)
			if idx < 0 {
				continue
			}
			start := max(0, idx-30)
			end := min(len(content), idx+len(needle)+30)
			out = append(out, Relation{
				Source: article.ID,
				Target: process.ID,
				Kind:   KindRegulates,
				Hint:   strings.TrimSpace(content[start:end]),
			})
		}
	}
	return out
}
