package relation

import (
	"testing"

	"github.com/fiuba-lse/consulta/entity"
)

func prog(code string, props map[string]any) entity.Entity {
	return entity.Entity{ID: entity.ID(entity.KindProgram, code), Name: code, Kind: entity.KindProgram, Properties: props}
}

func subj(code string) entity.Entity {
	return entity.Entity{ID: entity.ID(entity.KindSubject, code), Name: code, Kind: entity.KindSubject}
}

func TestDomainAxiomMIARequiresCEIA(t *testing.T) {
	entities := []entity.Entity{prog("MIA", nil), prog("CEIA", nil)}
	rels := domainAxioms(entities, "doc.txt")

	want := Relation{Source: entity.ID(entity.KindProgram, "MIA"), Target: entity.ID(entity.KindProgram, "CEIA"), Kind: KindRequiresGraduationFrom}
	if !containsRelation(rels, want) {
		t.Errorf("expected %v in %v", want, rels)
	}
}

func TestDomainAxiomSkipsWhenEndpointMissing(t *testing.T) {
	entities := []entity.Entity{prog("MIA", nil)}
	rels := domainAxioms(entities, "doc.txt")
	for _, r := range rels {
		if r.Kind == KindRequiresGraduationFrom {
			t.Errorf("axiom should not fire without CEIA present, got %v", r)
		}
	}
}

func TestDomainAxiomTTFChain(t *testing.T) {
	entities := []entity.Entity{subj("TTFA"), subj("TTFB"), subj("GdP")}
	rels := domainAxioms(entities, "doc.txt")

	wantA := Relation{Source: entity.ID(entity.KindSubject, "TTFA"), Target: entity.ID(entity.KindSubject, "GdP"), Kind: KindIsPrerequisiteOf}
	wantB := Relation{Source: entity.ID(entity.KindSubject, "TTFB"), Target: entity.ID(entity.KindSubject, "TTFA"), Kind: KindIsPrerequisiteOf}
	if !containsRelation(rels, wantA) || !containsRelation(rels, wantB) {
		t.Errorf("expected TTF prerequisite chain in %v", rels)
	}
}

func TestDomainAxiomGrantsTitle(t *testing.T) {
	entities := []entity.Entity{prog("CEIA", map[string]any{"title": "Especialista en Inteligencia Artificial"})}
	rels := domainAxioms(entities, "doc.txt")

	found := false
	for _, r := range rels {
		if r.Kind == KindGrantsTitle && r.Source == entity.ID(entity.KindProgram, "CEIA") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected grants_title relation, got %v", rels)
	}
}

func TestMapAllDedupesByTriple(t *testing.T) {
	entities := []entity.Entity{prog("MIA", nil), prog("CEIA", nil)}
	rels := MapAll(entities, "", "doc.txt")
	seen := map[string]bool{}
	for _, r := range rels {
		k := dedupKey(r)
		if seen[k] {
			t.Fatalf("duplicate relation %v", r)
		}
		seen[k] = true
	}
}

func TestDomainAxiomsPopulateHint(t *testing.T) {
	entities := []entity.Entity{prog("MIA", nil), prog("CEIA", nil)}
	rels := domainAxioms(entities, "doc.txt")
	for _, r := range rels {
		if r.Hint == "" {
			t.Errorf("relation %v has no Hint", r)
		}
	}
}

func TestRegexPrerequisiteResolvesBothEndpoints(t *testing.T) {
	entities := []entity.Entity{subj("TTFA"), subj("GdP")}
	text := "Para TTFA es necesario GdP."
	rels := regexAxioms(entities, text, "doc.txt")

	want := Relation{Source: entity.ID(entity.KindSubject, "GdP"), Target: entity.ID(entity.KindSubject, "TTFA"), Kind: KindIsPrerequisiteOf}
	if !containsRelation(rels, want) {
		t.Errorf("expected %v in %v", want, rels)
	}
}

// containsRelation compares by (source, target, kind) only: every axiom
// now also attaches a Hint, which these tests don't pin down verbatim.
func containsRelation(rels []Relation, want Relation) bool {
	for _, r := range rels {
		if r.Source == want.Source && r.Target == want.Target && r.Kind == want.Kind {
			return true
		}
	}
	return false
}
