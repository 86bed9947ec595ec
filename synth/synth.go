// Package synth implements the Answer Synthesizer (C11): mode-selected
// prompt templates, truncated context injection, and citation footers.
package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/fiuba-lse/consulta/llm"
	"github.com/fiuba-lse/consulta/retrieval"
)

const (
	hybridSideBudget = 2000
	singleModeBudget = 4000
)

const systemPrompt = `Sos un asistente que responde preguntas administrativas sobre los posgrados de un departamento universitario.
Reglas:
1. Respondé solo con hechos directamente respaldados por el contexto entregado.
2. Citá las fuentes numeradas cuando corresponda.
3. Si el contexto no alcanza para responder, decilo explícitamente.
4. Preservá nombres de programas, plazos y referencias a artículos tal como aparecen en el contexto.
5. Sé conciso.`

// Synthesizer calls the LLM collaborator with a mode-selected prompt.
type Synthesizer struct {
	chat llm.Provider
}

// New builds a Synthesizer.
func New(chat llm.Provider) *Synthesizer {
	return &Synthesizer{chat: chat}
}

// Synthesize builds the prompt for mode, inserts any prior history, and
// calls the LLM. A response starting with "[Error" is returned as-is;
// callers treat that sentinel as external_unavailable.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, history []llm.Message, mode retrieval.Mode, ragContext, graphContext string) (string, error) {
	prompt := buildPrompt(mode, question, ragContext, graphContext)

	if len(history) == 0 {
		return s.chat.Generate(ctx, prompt, systemPrompt)
	}
	messages := append(append([]llm.Message{}, history...), llm.Message{Role: "user", Content: prompt})
	return s.chat.GenerateWithHistory(ctx, messages, systemPrompt)
}

func buildPrompt(mode retrieval.Mode, question, ragContext, graphContext string) string {
	if mode == retrieval.ModeHybrid {
		return fmt.Sprintf(`Contexto documental (RAG):
%s

Contexto del grafo de conocimiento:
%s

Pregunta: %s

Combiná ambos contextos para responder. Si se contradicen, preferí el contexto documental y señalá la discrepancia.`,
			truncate(ragContext, hybridSideBudget), truncate(graphContext, hybridSideBudget), question)
	}

	combined := ragContext
	if combined == "" {
		combined = graphContext
	}
	return fmt.Sprintf(`Contexto:
%s

Pregunta: %s

Respondé basándote únicamente en el contexto anterior.`, truncate(combined, singleModeBudget), question)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// AttachWarning appends a low-confidence warning and fallback-contact
// suggestion to answer's formatted rendering without altering the
// answer text itself.
func AttachWarning(answer string, confidence, threshold float64, fallbackContact string) (formatted string, warnings []string) {
	if confidence >= threshold {
		return answer, nil
	}
	warning := "La confianza de esta respuesta es baja; verificá la información con la fuente oficial."
	formatted = answer + "\n\n⚠ " + warning
	if fallbackContact != "" {
		formatted += fmt.Sprintf(" Contacto sugerido: %s", fallbackContact)
	}
	return formatted, []string{warning}
}

// CitationFooter numbers sources [1..n] in the given order and renders
// a footer listing each as "[n] document, section".
func CitationFooter(names, sections []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nFuentes:\n")
	for i, name := range names {
		section := ""
		if i < len(sections) {
			section = sections[i]
		}
		if section != "" {
			fmt.Fprintf(&b, "[%d] %s, %s\n", i+1, name, section)
		} else {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, name)
		}
	}
	return b.String()
}
