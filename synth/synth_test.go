package synth

import (
	"context"
	"strings"
	"testing"

	"github.com/fiuba-lse/consulta/llm"
	"github.com/fiuba-lse/consulta/retrieval"
)

type fakeChat struct {
	gotPrompt  string
	gotHistory []llm.Message
}

func (f *fakeChat) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	f.gotPrompt = prompt
	return "respuesta", nil
}

func (f *fakeChat) GenerateWithHistory(ctx context.Context, messages []llm.Message, systemPrompt string) (string, error) {
	f.gotHistory = messages
	return "respuesta con historial", nil
}

func TestSynthesizeHybridIncludesBothContexts(t *testing.T) {
	chat := &fakeChat{}
	s := New(chat)
	_, err := s.Synthesize(context.Background(), "pregunta", nil, retrieval.ModeHybrid, "contexto rag", "contexto grafo")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(chat.gotPrompt, "contexto rag") || !strings.Contains(chat.gotPrompt, "contexto grafo") {
		t.Errorf("prompt missing a context: %s", chat.gotPrompt)
	}
}

func TestSynthesizeSingleModeOmitsGraphLabel(t *testing.T) {
	chat := &fakeChat{}
	s := New(chat)
	_, err := s.Synthesize(context.Background(), "pregunta", nil, retrieval.ModeRAG, "contexto rag", "")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(chat.gotPrompt, "contexto rag") {
		t.Errorf("prompt missing rag context: %s", chat.gotPrompt)
	}
}

func TestSynthesizeWithHistoryUsesGenerateWithHistory(t *testing.T) {
	chat := &fakeChat{}
	s := New(chat)
	history := []llm.Message{{Role: "user", Content: "hola"}}
	_, err := s.Synthesize(context.Background(), "pregunta", history, retrieval.ModeRAG, "ctx", "")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(chat.gotHistory) != 2 {
		t.Errorf("expected history + current turn, got %d messages", len(chat.gotHistory))
	}
}

func TestAttachWarningOnlyBelowThreshold(t *testing.T) {
	formatted, warnings := AttachWarning("respuesta", 0.9, 0.3, "contacto@fi.uba.ar")
	if formatted != "respuesta" || len(warnings) != 0 {
		t.Errorf("expected no warning above threshold, got %q %v", formatted, warnings)
	}

	formatted, warnings = AttachWarning("respuesta", 0.1, 0.3, "contacto@fi.uba.ar")
	if len(warnings) != 1 || !strings.Contains(formatted, "contacto@fi.uba.ar") {
		t.Errorf("expected warning with contact, got %q %v", formatted, warnings)
	}
}

func TestCitationFooterNumbersInOrder(t *testing.T) {
	footer := CitationFooter([]string{"doc1.pdf", "doc2.pdf"}, []string{"Art. 5", ""})
	if !strings.Contains(footer, "[1] doc1.pdf, Art. 5") {
		t.Errorf("footer missing numbered citation: %s", footer)
	}
	if !strings.Contains(footer, "[2] doc2.pdf") {
		t.Errorf("footer missing second citation: %s", footer)
	}
}
