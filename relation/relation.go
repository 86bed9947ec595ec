// Package relation implements the Relation Mapper (C5): a closed set of
// domain axioms and regex patterns that connect entities produced by
// entity.ExtractAll into typed, directed relations. No LLM calls.
package relation

import "github.com/fiuba-lse/consulta/entity"

// Kind is the closed set of relation kinds.
type Kind string

const (
	KindRequiresGraduationFrom Kind = "requires_graduation_from"
	KindCombinesWith           Kind = "combines_with"
	KindBelongsTo              Kind = "belongs_to"
	KindGrantsTitle            Kind = "grants_title"
	KindIsPrerequisiteOf       Kind = "is_prerequisite_of"
	KindRegulates              Kind = "regulates"
	KindHasDeadline            Kind = "has_deadline"
	KindAppliesTo              Kind = "applies_to"
	KindContactFor             Kind = "contact_for"
	KindDocumentedIn           Kind = "documented_in"
)

// Relation is a typed, directed edge between two entity IDs.
type Relation struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   Kind   `json:"kind"`
	Hint   string `json:"hint,omitempty"`
}

func dedupKey(r Relation) string {
	return r.Source + "\x00" + r.Target + "\x00" + string(r.Kind)
}

// Dedup removes duplicate relations by (source, target, kind), keeping
// the first occurrence.
func Dedup(relations []Relation) []Relation {
	seen := make(map[string]bool, len(relations))
	out := make([]Relation, 0, len(relations))
	for _, r := range relations {
		k := dedupKey(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// MapAll runs domain axioms and regex axioms over the given entity set
// and source text, returning a deduplicated relation list.
func MapAll(entities []entity.Entity, text, sourceDocument string) []Relation {
	var out []Relation
	out = append(out, domainAxioms(entities, sourceDocument)...)
	out = append(out, regexAxioms(entities, text, sourceDocument)...)
	return Dedup(out)
}

// byName indexes entities by (kind, lowercased name) for axiom lookups.
func byName(entities []entity.Entity) map[string]entity.Entity {
	out := make(map[string]entity.Entity, len(entities))
	for _, e := range entities {
		out[string(e.Kind)+"\x00"+normalizeName(e.Name)] = e
	}
	return out
}

func normalizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			r = r - 'A' + 'a'
		}
		out = append(out, r)
	}
	return string(out)
}

func find(index map[string]entity.Entity, kind entity.Kind, name string) (entity.Entity, bool) {
	e, ok := index[string(kind)+"\x00"+normalizeName(name)]
	return e, ok
}
