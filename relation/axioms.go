package relation

import (
	"fmt"
	"sort"

	"github.com/fiuba-lse/consulta/entity"
)

// degreeLevel classifies each known program code, used to pick the
// has_deadline axiom's default term.
var degreeLevel = map[string]string{
	"CEIA":  "especializacion",
	"CESE":  "especializacion",
	"CEIoT": "especializacion",
	"MIA":   "maestria",
	"MIAE":  "maestria",
	"MIoT":  "maestria",
	"MCB":   "maestria",
}

// defaultDeadlineTerm is the deadline entity name (see
// entity.extractDeadlines's "<value>_<unit>" naming) each degree level
// is expected to carry, when present in the same document.
var defaultDeadlineTerm = map[string]string{
	"especializacion": "2_years",
	"maestria":        "4_years",
}

// domainAxioms fires a fixed table of hard-coded relations, each only
// when both endpoints are present in the given entity set, except
// grants_title, which fires from a program's "title" property alone and
// does not require the title entity to be in the set.
func domainAxioms(entities []entity.Entity, sourceDocument string) []Relation {
	index := byName(entities)
	var out []Relation

	if _, ok := find(index, entity.KindProgram, "MIA"); ok {
		if _, ok := find(index, entity.KindProgram, "CEIA"); ok {
			out = append(out, edge(index, entity.KindProgram, "MIA", entity.KindProgram, "CEIA", KindRequiresGraduationFrom,
				"Axiom: MIA requires prior graduation from CEIA"))
		}
	}

	if _, ok := find(index, entity.KindProgram, "MIAE"); ok {
		for _, combinable := range []string{"CEIA", "CESE"} {
			if _, ok := find(index, entity.KindProgram, combinable); ok {
				out = append(out, edge(index, entity.KindProgram, "MIAE", entity.KindProgram, combinable, KindCombinesWith,
					fmt.Sprintf("Axiom: MIAE combines with %s", combinable)))
			}
		}
	}

	if _, ok := find(index, entity.KindSubject, "TTFA"); ok {
		if _, ok := find(index, entity.KindSubject, "GdP"); ok {
			out = append(out, edge(index, entity.KindSubject, "TTFA", entity.KindSubject, "GdP", KindIsPrerequisiteOf,
				"Axiom: TTFA is a prerequisite of GdP"))
		}
	}
	if _, ok := find(index, entity.KindSubject, "TTFB"); ok {
		if _, ok := find(index, entity.KindSubject, "TTFA"); ok {
			out = append(out, edge(index, entity.KindSubject, "TTFB", entity.KindSubject, "TTFA", KindIsPrerequisiteOf,
				"Axiom: TTFB is a prerequisite of TTFA"))
		}
	}

	degreeCodes := make([]string, 0, len(degreeLevel))
	for code := range degreeLevel {
		degreeCodes = append(degreeCodes, code)
	}
	sort.Strings(degreeCodes)
	for _, code := range degreeCodes {
		prog, ok := find(index, entity.KindProgram, code)
		if !ok {
			continue
		}
		level := degreeLevel[code]
		term := defaultDeadlineTerm[level]
		if deadline, ok := find(index, entity.KindDeadline, term); ok {
			out = append(out, Relation{
				Source: prog.ID,
				Target: deadline.ID,
				Kind:   KindHasDeadline,
				Hint:   fmt.Sprintf("Axiom: %s (%s) carries the default %s deadline", code, level, term),
			})
		}
	}

	belongsChain := [][2]string{{"LSE", "FIUBA"}, {"FIUBA", "UBA"}}
	for _, pair := range belongsChain {
		a, okA := find(index, entity.KindInstitution, pair[0])
		b, okB := find(index, entity.KindInstitution, pair[1])
		if okA && okB {
			out = append(out, Relation{
				Source: a.ID,
				Target: b.ID,
				Kind:   KindBelongsTo,
				Hint:   fmt.Sprintf("Axiom: %s belongs to %s", pair[0], pair[1]),
			})
		}
	}

	for _, e := range entities {
		if e.Kind != entity.KindProgram && e.Kind != entity.KindSubject {
			continue
		}
		title, ok := e.Properties["title"]
		if !ok {
			continue
		}
		titleName := "title_" + e.Name
		out = append(out, Relation{
			Source: e.ID,
			Target: entity.ID(entity.KindTitle, titleName),
			Kind:   KindGrantsTitle,
			Hint:   fmt.Sprintf("Axiom: %s grants title %v", e.Name, title),
		})
	}

	return out
}

// edge builds a Relation between two named entities already confirmed
// present in index, looked up again for their IDs.
func edge(index map[string]entity.Entity, sourceKind entity.Kind, sourceName string, targetKind entity.Kind, targetName string, kind Kind, hint string) Relation {
	src, _ := find(index, sourceKind, sourceName)
	dst, _ := find(index, targetKind, targetName)
	return Relation{Source: src.ID, Target: dst.ID, Kind: kind, Hint: hint}
}
