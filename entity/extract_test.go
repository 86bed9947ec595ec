package entity

import "testing"

func TestExtractProgramsByCodeAndFullName(t *testing.T) {
	text := "La Maestría en Inteligencia Artificial (MIA) requiere haber completado la CEIA."
	entities := ExtractAll(text, "doc.txt")

	want := map[string]bool{ID(KindProgram, "MIA"): true, ID(KindProgram, "CEIA"): true}
	got := map[string]bool{}
	for _, e := range entities {
		got[e.ID] = true
	}
	for id := range want {
		if !got[id] {
			t.Errorf("missing expected program entity %s", id)
		}
	}
}

func TestExtractDeadlineCapturesValueUnitAndContext(t *testing.T) {
	text := "El plazo máximo para presentar el trabajo final es de 4 años corridos desde la inscripción."
	entities := ExtractAll(text, "doc.txt")

	var found *Entity
	for i := range entities {
		if entities[i].Kind == KindDeadline {
			found = &entities[i]
			break
		}
	}
	if found == nil {
		t.Fatal("expected a deadline entity")
	}
	if found.Properties["value"] != 4 {
		t.Errorf("value = %v, want 4", found.Properties["value"])
	}
	if found.Properties["unit"] != "years" {
		t.Errorf("unit = %v, want years", found.Properties["unit"])
	}
	if found.Properties["context"] == "" {
		t.Error("expected non-empty context")
	}
}

func TestExtractContactDedupesByEmail(t *testing.T) {
	text := "Contactar a secretaria@fi.uba.ar o SECRETARIA@fi.uba.ar para más información."
	entities := ExtractAll(text, "doc.txt")

	count := 0
	for _, e := range entities {
		if e.Kind == KindContact {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 deduplicated contact entity, got %d", count)
	}
}

func TestExtractArticleContentBoundedByNextArticle(t *testing.T) {
	text := "Art. 1 Este artículo regula la inscripción. Art. 2 Este otro regula la baja."
	entities := ExtractAll(text, "doc.txt")

	var first *Entity
	for i := range entities {
		if entities[i].Kind == KindArticle && entities[i].Name == "Art. 1" {
			first = &entities[i]
		}
	}
	if first == nil {
		t.Fatal("expected Art. 1 entity")
	}
	content := first.Properties["content"].(string)
	if contains(content, "Art. 2") {
		t.Errorf("article content should stop before the next article marker, got %q", content)
	}
}

func TestExtractInstitutionChain(t *testing.T) {
	text := "El LSE depende de la FIUBA, que integra la UBA."
	entities := ExtractAll(text, "doc.txt")

	kinds := map[string]bool{}
	for _, e := range entities {
		if e.Kind == KindInstitution {
			kinds[e.Name] = true
		}
	}
	for _, want := range []string{"LSE", "FIUBA", "UBA"} {
		if !kinds[want] {
			t.Errorf("missing institution entity %s", want)
		}
	}
}

func TestExtractAllIsOrderStableAcrossRuns(t *testing.T) {
	text := "El LSE depende de la FIUBA, que integra la UBA. " +
		"La inscripción y la baja se rigen por Art. 1. " +
		"Readmisión, prórroga y vinculación también aplican."

	var first []string
	for i := 0; i < 20; i++ {
		entities := ExtractAll(text, "doc.txt")
		ids := make([]string, len(entities))
		for j, e := range entities {
			ids[j] = e.ID
		}
		if i == 0 {
			first = ids
			continue
		}
		if len(ids) != len(first) {
			t.Fatalf("run %d: got %d entities, want %d", i, len(ids), len(first))
		}
		for j := range ids {
			if ids[j] != first[j] {
				t.Fatalf("run %d: emission order changed at index %d: got %s, want %s", i, j, ids[j], first[j])
			}
		}
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
