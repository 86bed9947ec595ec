package metadata

import (
	"testing"

	"github.com/fiuba-lse/consulta/chunker"
)

func testRegistry() Registry {
	return Registry{
		Documents: map[string]DocumentEntry{
			"CEIA.pdf": {
				ProgramCodes:     []string{"CEIA"},
				ProgramFullNames: []string{"Carrera de Especialización en Inteligencia Artificial"},
				DegreeLevel:      "especializacion",
				DocumentType:     "resolution",
				Topics:           []string{"plan_de_estudios", "requisitos"},
			},
		},
		Aliases: map[string]string{},
	}
}

func TestTagDocumentMergesRegistryAndContent(t *testing.T) {
	tagger := New(testRegistry())
	text := "La Maestría en Inteligencia Artificial Embebida (MIAE) combina con CESE. Contacto: lse@fi.uba.ar. RESCS-2024-123-E-UBA-REC."

	md := tagger.TagDocument("CEIA.pdf", text, "resolution")

	if md.DocumentType != chunker.DocResolution {
		t.Errorf("document_type = %q, want resolution", md.DocumentType)
	}
	if !contains(md.ProgramCodes, "CEIA") {
		t.Errorf("expected registry program code CEIA to survive: %v", md.ProgramCodes)
	}
	if !contains(md.ProgramCodes, "MIAE") || !contains(md.ProgramCodes, "CESE") {
		t.Errorf("expected content-detected programs MIAE and CESE: %v", md.ProgramCodes)
	}
	if len(md.ContactEmails) != 1 || md.ContactEmails[0] != "lse@fi.uba.ar" {
		t.Errorf("expected one extracted email, got %v", md.ContactEmails)
	}
	if md.ResolutionNumber != "RESCS-2024-123-E-UBA-REC" {
		t.Errorf("resolution_number = %q", md.ResolutionNumber)
	}
}

func TestTagDocumentUnknownFilenameFallsBackToClassHint(t *testing.T) {
	tagger := New(testRegistry())
	md := tagger.TagDocument("unknown-file.pdf", "texto sin programas", "faq")
	if md.DocumentType != chunker.DocFAQ {
		t.Errorf("document_type = %q, want faq from class hint", md.DocumentType)
	}
	if len(md.ProgramCodes) != 0 {
		t.Errorf("expected no program codes, got %v", md.ProgramCodes)
	}
}

func TestTagChunkDetectsMentionedProgramsAndPreservesQuestion(t *testing.T) {
	tagger := New(testRegistry())
	doc := tagger.TagDocument("CEIA.pdf", "", "resolution")

	existing := chunker.Metadata{Question: "¿Cuáles son los requisitos de admisión?"}
	enriched := tagger.TagChunk("Los requisitos de inscripcion para la MIA son los siguientes.", doc, existing)

	if enriched.Question == "" {
		t.Error("expected Question to survive tagging")
	}
	if !contains(enriched.MentionedPrograms, "MIA") {
		t.Errorf("expected MIA to be detected as mentioned program: %v", enriched.MentionedPrograms)
	}
	if !contains(enriched.Topics, "inscripcion") || !contains(enriched.Topics, "requisitos") {
		t.Errorf("expected inscripcion and requisitos topics: %v", enriched.Topics)
	}
}

func TestRegistryAliasLookup(t *testing.T) {
	reg := Registry{
		Documents: map[string]DocumentEntry{
			"Reglamento de Cursada.pdf": {DocumentType: "regulation"},
		},
		Aliases: map[string]string{
			"reglamento": "Reglamento de Cursada.pdf",
		},
	}
	entry, ok := reg.lookup("REGLAMENTO-2025-v3.pdf")
	if !ok {
		t.Fatal("expected alias match")
	}
	if entry.DocumentType != "regulation" {
		t.Errorf("document_type = %q", entry.DocumentType)
	}
}
