package antihallucination

import (
	"context"
	"testing"
)

func TestSplitClaimsFiltersShortSpans(t *testing.T) {
	claims := SplitClaims("La asistencia mínima es del 75%. Ok. Esto es una oración completa sobre el reglamento.")
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d: %v", len(claims), claims)
	}
}

func TestHeuristicCheckDefaultsWhenNoTokens(t *testing.T) {
	score := heuristicCheck("Este es un texto sin tokens reconocibles.", "contexto cualquiera")
	if score != 0.7 {
		t.Errorf("score = %f, want 0.7", score)
	}
}

func TestHeuristicCheckScoresMatchedTokens(t *testing.T) {
	score := heuristicCheck("La MIA requiere Art. 5 y 4 años.", "La MIA requiere Art. 5 de la normativa.")
	if score <= 0 || score > 1 {
		t.Errorf("score out of range: %f", score)
	}
}

func TestCrossReferenceNeutralWhenOneSidedEmpty(t *testing.T) {
	c := NewChecker(nil, nil)
	score, err := c.CrossReference(context.Background(), "algo de contexto", "")
	if err != nil {
		t.Fatalf("CrossReference: %v", err)
	}
	if score != 0.5 {
		t.Errorf("score = %f, want 0.5", score)
	}
}

func TestConfidenceClampedAndWeighted(t *testing.T) {
	c := Confidence(1.0, 1.0, 10, 1.0)
	if c != 1.0 {
		t.Errorf("confidence = %f, want 1.0", c)
	}
	c = Confidence(0, 0, 0, 0)
	if c != 0 {
		t.Errorf("confidence = %f, want 0", c)
	}
}

func TestShouldAbstainOutOfScope(t *testing.T) {
	abstain, reason := ShouldAbstain("¿Cuánto cuesta la carrera?", 0.9, 0.3)
	if !abstain {
		t.Fatal("expected abstention for out-of-scope query")
	}
	if reason == "" {
		t.Error("expected a reason")
	}
}

func TestShouldAbstainLowConfidence(t *testing.T) {
	abstain, reason := ShouldAbstain("¿Qué requisitos tiene la MIA?", 0.1, 0.3)
	if !abstain {
		t.Fatal("expected abstention for low confidence")
	}
	if reason == "" {
		t.Error("expected a reason")
	}
}

func TestShouldAbstainFalseWhenConfidentAndInScope(t *testing.T) {
	abstain, _ := ShouldAbstain("¿Qué requisitos tiene la MIA?", 0.9, 0.3)
	if abstain {
		t.Error("should not abstain with high confidence and in-scope query")
	}
}

func TestDispatchPicksEnrollment(t *testing.T) {
	contacts := DefaultFallbackContacts()
	got := Dispatch("¿Cómo me inscribo?", contacts)
	if got != contacts["enrollment"] {
		t.Errorf("got %q, want enrollment contact", got)
	}
}

func TestDispatchPicksGraduateDirectionForFinalWork(t *testing.T) {
	contacts := DefaultFallbackContacts()
	got := Dispatch("¿Cuándo es la defensa de mi tesis?", contacts)
	if got != contacts["graduate_direction"] {
		t.Errorf("got %q, want graduate_direction contact", got)
	}
}

func TestDispatchDefault(t *testing.T) {
	contacts := DefaultFallbackContacts()
	got := Dispatch("hola", contacts)
	if got != contacts["default"] {
		t.Errorf("got %q, want default contact", got)
	}
}
