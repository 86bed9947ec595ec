package chunker

import (
	"strings"
	"testing"
)

func TestStrategyDispatch(t *testing.T) {
	c := New(Config{MinTokens: 5, MaxTokens: 512, Overlap: 8})

	cases := []struct {
		docType  DocumentType
		text     string
		strategy Strategy
	}{
		{DocOther, "Plain paragraph text with nothing special about it at all.", StrategyFixed},
		{DocRegulation, "ARTICULO PRIMERO\nEl presente reglamento regula los plazos de entrega del trabajo final.\n\nARTICULO SEGUNDO\nLos estudiantes deberan presentar el proyecto final dentro del plazo establecido.", StrategySemantic},
		{DocFAQ, "- ¿Cuál es la asistencia mínima?\nLa asistencia mínima es del 75%.\n\n- ¿Cómo me inscribo?\nDebés completar el formulario en el SIU.", StrategyQA},
	}

	for _, tt := range cases {
		chunks := c.Chunk("doc.txt", tt.docType, tt.text)
		if len(chunks) == 0 {
			t.Fatalf("%s: expected at least one chunk", tt.docType)
		}
		if chunks[0].Strategy != tt.strategy {
			t.Errorf("%s: strategy = %q, want %q", tt.docType, chunks[0].Strategy, tt.strategy)
		}
	}
}

func TestQAFallsBackToSemanticWithoutQuestions(t *testing.T) {
	c := New(Config{MinTokens: 5, MaxTokens: 512, Overlap: 8})
	chunks := c.Chunk("doc.txt", DocFAQ, "ARTICULO PRIMERO\nNo hay preguntas aca, solo texto reglamentario extenso de varias lineas.")
	if len(chunks) == 0 {
		t.Fatal("expected fallback chunks")
	}
	if chunks[0].Strategy != StrategySemantic {
		t.Errorf("strategy = %q, want semantic fallback", chunks[0].Strategy)
	}
}

func TestQAChunkShape(t *testing.T) {
	c := New(Config{MinTokens: 1, MaxTokens: 512, Overlap: 8})
	chunks := c.Chunk("faq.txt", DocFAQ, "- ¿Cuál es la asistencia mínima?\nLa asistencia mínima es del 75%.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	ch := chunks[0]
	if ch.Metadata.Question == "" {
		t.Error("expected metadata.question to be set")
	}
	if !strings.Contains(ch.Text, "Pregunta:") || !strings.Contains(ch.Text, "Respuesta:") {
		t.Errorf("chunk text missing Pregunta/Respuesta markers: %q", ch.Text)
	}
}

func TestTokenBounds(t *testing.T) {
	c := New(Config{MinTokens: 20, MaxTokens: 60, Overlap: 8})
	longText := strings.Repeat("palabra ", 400)
	chunks := c.Chunk("big.txt", DocOther, longText)
	if len(chunks) < 2 {
		t.Fatalf("expected the long text to be split into multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.TokenCount > c.cfg.MaxTokens {
			t.Errorf("chunk %d: token_count %d exceeds MaxTokens %d", i, ch.TokenCount, c.cfg.MaxTokens)
		}
	}
}

func TestChunkingIdempotence(t *testing.T) {
	c := New(Config{MinTokens: 10, MaxTokens: 100, Overlap: 16})
	text := "Primer parrafo con contenido administrativo.\n\nSegundo parrafo con mas contenido sobre inscripciones y tramites varios."

	first := c.Chunk("idempotent.txt", DocOther, text)
	second := c.Chunk("idempotent.txt", DocOther, text)

	if len(first) != len(second) {
		t.Fatalf("chunk count differs across runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ChunkID != second[i].ChunkID {
			t.Errorf("chunk %d: id differs across runs: %s vs %s", i, first[i].ChunkID, second[i].ChunkID)
		}
		if first[i].Text != second[i].Text {
			t.Errorf("chunk %d: text differs across runs", i)
		}
	}
}

func TestSentenceSplitProtectsAbbreviations(t *testing.T) {
	sentences := splitSentences("El Art. 5 establece el plazo. La entrega es en Sept.")
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
	if !strings.HasPrefix(sentences[0], "El Art. 5") {
		t.Errorf("abbreviation split incorrectly: %q", sentences[0])
	}
}
