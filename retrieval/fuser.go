package retrieval

import (
	"fmt"
	"strings"
)

// Mode selects which retrieval arms the Hybrid Fuser (C9) consults.
type Mode string

const (
	ModeRAG    Mode = "rag_only"
	ModeGraph  Mode = "graph_only"
	ModeHybrid Mode = "hybrid"
)

// Weights is a (rag, graph) weight pair produced by the query classifier.
type Weights struct {
	RAG   float64
	Graph float64
}

var pathKeywords = []string{"camino de", "desde", "hasta", "cómo llego", "como llego", "pasos desde", "trayecto"}

var structuralKeywords = []string{
	"requisito", "necesito para", "correlativa", "prerrequisito", "camino",
	"desde", "hasta", "pasos para", "antes de", "después de", "despues de", "primero",
}

var descriptiveKeywords = []string{
	"qué es", "que es", "cómo funciona", "como funciona", "explicar", "describir",
	"fundamentación", "fundamentacion", "objetivos", "perfil",
}

// pathPhrases are multi-word phrases that mark a genuine path query; a
// bare "desde"/"hasta" mention does not count here (those words match
// the broader structural tier).
var pathPhrases = []string{"camino de", "cómo llego", "como llego", "pasos desde", "trayecto"}

// Classify returns the query-class-dependent (rag, graph) weight pair.
// Path keywords take priority over structural; structural over
// descriptive; otherwise the default pair applies.
func Classify(query string) Weights {
	lower := strings.ToLower(query)

	if containsAny(lower, pathPhrases) || (strings.Contains(lower, "desde") && strings.Contains(lower, "hasta")) {
		return Weights{RAG: 0.1, Graph: 0.9}
	}
	if containsAny(lower, structuralKeywords) {
		return Weights{RAG: 0.3, Graph: 0.7}
	}
	if containsAny(lower, descriptiveKeywords) {
		return Weights{RAG: 0.8, Graph: 0.2}
	}
	return Weights{RAG: 0.6, Graph: 0.4}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// HybridResult is the Fuser's output: both arms' raw results plus the
// merged, labeled context text ready for synthesis.
type HybridResult struct {
	RAGResults      []RAGResult
	GraphResults    []GraphResult
	MergedContext   string
	RAGConfidence   float64
	GraphConfidence float64
	Mode            Mode
	Weights         Weights
}

// Merge builds the labeled context sections and confidence averages.
// ragResults/graphResults should already be empty when their mode is
// excluded by the caller.
func Merge(mode Mode, weights Weights, ragResults []RAGResult, graphResults []GraphResult) HybridResult {
	var b strings.Builder

	if len(ragResults) > 0 {
		b.WriteString("=== RAG ===\n")
		for i, r := range ragResults {
			fmt.Fprintf(&b, "[RAG-%d: %s, %s (%.2f)]\n%s\n\n", i+1, r.DocumentName, r.SectionTitle, r.Score, r.Text)
		}
	}
	if len(graphResults) > 0 {
		b.WriteString("=== GRAPH ===\n")
		for i, r := range graphResults {
			fmt.Fprintf(&b, "[Graph-%d (%.2f)]\n%s\n", i+1, r.Confidence, r.Text)
			if r.Path != "" {
				fmt.Fprintf(&b, "path: %s\n", r.Path)
			}
			b.WriteString("\n")
		}
	}

	return HybridResult{
		RAGResults:      ragResults,
		GraphResults:    graphResults,
		MergedContext:   strings.TrimSpace(b.String()),
		RAGConfidence:   meanScore(ragResults),
		GraphConfidence: meanConfidence(graphResults),
		Mode:            mode,
		Weights:         weights,
	}
}

func meanScore(results []RAGResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	return sum / float64(len(results))
}

func meanConfidence(results []GraphResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Confidence
	}
	return sum / float64(len(results))
}
