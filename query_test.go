package consulta

import (
	"testing"

	"github.com/fiuba-lse/consulta/antihallucination"
	"github.com/fiuba-lse/consulta/retrieval"
)

func TestParseModeDefaultsToHybrid(t *testing.T) {
	mode, err := parseMode("")
	if err != nil || mode != retrieval.ModeHybrid {
		t.Fatalf("parseMode(\"\") = %v, %v; want ModeHybrid, nil", mode, err)
	}
}

func TestParseModeRejectsUnknown(t *testing.T) {
	if _, err := parseMode("sql"); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestSynthesizeAbstentionDispatchesFallbackContact(t *testing.T) {
	contacts := antihallucination.FallbackContacts{
		"enrollment": "inscripciones@fi.uba.ar",
		"default":    "info@fi.uba.ar",
	}
	answer, warnings := synthesizeAbstention("¿Cómo me inscribo?", contacts)
	if !contains(answer, "inscripciones@fi.uba.ar") {
		t.Errorf("answer = %q, want it to mention the enrollment contact", answer)
	}
	if len(warnings) == 0 {
		t.Error("expected at least one abstention warning")
	}
}

func TestBuildSourcesPrefersRelevantSnippetOverFullChunk(t *testing.T) {
	ragResults := []retrieval.RAGResult{{
		DocumentName: "reglamento.pdf",
		SectionTitle: "Inscripción",
		Text:         "Este es un párrafo introductorio sin relación. El plazo de inscripción vence en marzo. Otro párrafo final sin relación.",
		Score:        0.9,
	}}
	sources := buildSources(ragResults, nil, map[string]bool{"inscripción": true, "marzo": true})
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if sources[0].TextSnippet == ragResults[0].Text {
		t.Error("expected a trimmed snippet, got the full chunk text back")
	}
	if !contains(sources[0].TextSnippet, "marzo") {
		t.Errorf("snippet %q does not contain the relevant sentence", sources[0].TextSnippet)
	}
}

func TestBuildSourcesFallsBackToFullTextWithoutOverlap(t *testing.T) {
	ragResults := []retrieval.RAGResult{{DocumentName: "doc.pdf", Text: "Texto sin ninguna palabra relevante aquí."}}
	sources := buildSources(ragResults, nil, map[string]bool{"inexistente": true})
	if sources[0].TextSnippet != ragResults[0].Text {
		t.Errorf("expected fallback to full text, got %q", sources[0].TextSnippet)
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
