package consulta

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fiuba-lse/consulta/antihallucination"
	"github.com/fiuba-lse/consulta/llm"
	"github.com/fiuba-lse/consulta/retrieval"
	"github.com/fiuba-lse/consulta/synth"
)

// QueryRequest is the engine's query-time input.
type QueryRequest struct {
	Question      string        `json:"question"`
	Mode          string        `json:"mode"` // "rag", "graph", "hybrid" (default hybrid)
	ProgramFilter string        `json:"program_filter,omitempty"`
	SessionID     string        `json:"session_id,omitempty"`
	History       []llm.Message `json:"-"`
}

// Source is one citation attached to an answer.
type Source struct {
	DocumentName string  `json:"document_name"`
	PageNumbers  []int   `json:"page_numbers,omitempty"`
	SectionTitle string  `json:"section_title"`
	TextSnippet  string  `json:"text_snippet"`
	Score        float64 `json:"score"`
	SourceType   string  `json:"source_type"` // "rag" or "graph"
}

// QueryResponse is the engine's query-time output.
type QueryResponse struct {
	Answer           string   `json:"answer"`
	FormattedAnswer  string   `json:"formatted_answer"`
	Sources          []Source `json:"sources"`
	Confidence       float64  `json:"confidence"`
	Method           string   `json:"method"`
	Warnings         []string `json:"warnings"`
	FallbackContacts []string `json:"fallback_contacts,omitempty"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
}

const (
	retrievalK = 6
)

func parseMode(raw string) (retrieval.Mode, error) {
	switch raw {
	case "", "hybrid":
		return retrieval.ModeHybrid, nil
	case "rag":
		return retrieval.ModeRAG, nil
	case "graph":
		return retrieval.ModeGraph, nil
	default:
		return "", NewInputInvalid(fmt.Sprintf("unknown mode %q", raw))
	}
}

// Query answers req against the current corpus. Hybrid mode tolerates a
// single arm failing: the surviving arm's results are used and the
// failure is attached as a warning rather than surfaced as an error.
func (e *Engine) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	start := time.Now()

	if n := len(req.Question); n < 3 || n > 1000 {
		return QueryResponse{}, NewInputInvalid("question must be between 3 and 1000 characters")
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return QueryResponse{}, err
	}

	e.mu.RLock()
	indexEmpty := e.index.Len() == 0
	graphEmpty := e.gr.Len() == 0
	dense := e.dense
	graphRet := e.graphRet
	e.mu.RUnlock()

	if indexEmpty && graphEmpty {
		formatted, abstainWarnings := synthesizeAbstention(req.Question, e.contacts)
		return QueryResponse{
			Answer:           formatted,
			FormattedAnswer:  formatted,
			Sources:          []Source{},
			Confidence:       0,
			Method:           string(mode),
			Warnings:         abstainWarnings,
			FallbackContacts: []string{antihallucination.Dispatch(req.Question, e.contacts)},
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	weights := retrieval.Classify(req.Question)
	var warnings []string

	var ragResults []retrieval.RAGResult
	var graphResults []retrieval.GraphResult

	wantRAG := mode == retrieval.ModeRAG || mode == retrieval.ModeHybrid
	wantGraph := mode == retrieval.ModeGraph || mode == retrieval.ModeHybrid

	if wantRAG && !indexEmpty {
		results, err := dense.Search(ctx, req.Question, retrievalK, req.ProgramFilter)
		if err != nil {
			if mode == retrieval.ModeRAG {
				return QueryResponse{}, NewExternalUnavailable("dense retrieval failed", err)
			}
			warnings = append(warnings, fmt.Sprintf("dense retrieval unavailable: %v", err))
		} else {
			ragResults = results
		}
	}
	if wantGraph && !graphEmpty {
		graphResults = graphRet.Search(req.Question, retrievalK)
	}

	if len(ragResults) == 0 && len(graphResults) == 0 {
		formatted, abstainWarnings := synthesizeAbstention(req.Question, e.contacts)
		return QueryResponse{
			Answer:           formatted,
			FormattedAnswer:  formatted,
			Sources:          []Source{},
			Confidence:       0,
			Method:           string(mode),
			Warnings:         append(warnings, abstainWarnings...),
			FallbackContacts: []string{antihallucination.Dispatch(req.Question, e.contacts)},
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	merged := retrieval.Merge(mode, weights, ragResults, graphResults)
	ragText := ragContextOf(ragResults)
	graphText := graphContextOf(graphResults)

	answer, err := e.synth.Synthesize(ctx, req.Question, req.History, mode, ragText, graphText)
	if err == nil && strings.HasPrefix(answer, "[Error") {
		return QueryResponse{}, NewExternalUnavailable("answer synthesis failed", errors.New(answer))
	}
	if err != nil {
		return QueryResponse{
			Answer:           fmt.Sprintf("[Error: %v]", err),
			FormattedAnswer:  fmt.Sprintf("[Error: %v]", err),
			Sources:          []Source{},
			Confidence:       0,
			Method:           string(mode),
			Warnings:         append(warnings, "synthesis failed"),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	faithfulness, ferr := e.checker.CheckFaithfulness(ctx, answer, merged.MergedContext)
	if ferr != nil {
		warnings = append(warnings, fmt.Sprintf("faithfulness check unavailable: %v", ferr))
		faithfulness = 0.5
	}

	crossRef := 1.0
	if mode == retrieval.ModeHybrid && len(ragResults) > 0 && len(graphResults) > 0 {
		if cr, cerr := e.checker.CrossReference(ctx, ragText, graphText); cerr == nil {
			crossRef = cr
		}
	}

	avgRetrieval := weights.RAG*merged.RAGConfidence + weights.Graph*merged.GraphConfidence
	sourceCount := len(ragResults) + len(graphResults)
	confidence := antihallucination.Confidence(avgRetrieval, faithfulness, sourceCount, crossRef)

	if !antihallucination.IsFaithful(faithfulness) {
		warnings = append(warnings, "answer may not be fully grounded in retrieved context")
	}

	abstain, reason := antihallucination.ShouldAbstain(req.Question, confidence, e.abstentionThreshold())
	var fallbackContacts []string
	if abstain {
		warnings = append(warnings, reason)
		fallbackContacts = []string{antihallucination.Dispatch(req.Question, e.contacts)}
	}

	sources := buildSources(ragResults, graphResults, synth.SignificantWords(answer))
	footer := synth.CitationFooter(sourceNames(sources), sourceSections(sources))
	formatted, attachWarnings := synth.AttachWarning(answer+footer, confidence, e.abstentionThreshold(), firstOrEmpty(fallbackContacts))
	warnings = append(warnings, attachWarnings...)

	return QueryResponse{
		Answer:           answer,
		FormattedAnswer:  formatted,
		Sources:          sources,
		Confidence:       confidence,
		Method:           string(mode),
		Warnings:         warnings,
		FallbackContacts: fallbackContacts,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// CompareResponse runs all three modes against the same question so a
// caller can inspect how retrieval strategy changes the answer.
type CompareResponse struct {
	RAG    QueryResponse `json:"rag"`
	Graph  QueryResponse `json:"graph"`
	Hybrid QueryResponse `json:"hybrid"`
}

// Compare answers req under all three modes.
func (e *Engine) Compare(ctx context.Context, req QueryRequest) (CompareResponse, error) {
	var out CompareResponse
	for _, m := range []struct {
		mode string
		dst  *QueryResponse
	}{
		{"rag", &out.RAG},
		{"graph", &out.Graph},
		{"hybrid", &out.Hybrid},
	} {
		r := req
		r.Mode = m.mode
		resp, err := e.Query(ctx, r)
		if err != nil {
			return out, err
		}
		*m.dst = resp
	}
	return out, nil
}

func (e *Engine) abstentionThreshold() float64 {
	return e.cfg.AbstentionThreshold
}

func ragContextOf(results []retrieval.RAGResult) string {
	var out string
	for i, r := range results {
		out += fmt.Sprintf("[%d] %s — %s\n%s\n\n", i+1, r.DocumentName, r.SectionTitle, r.Text)
	}
	return out
}

func graphContextOf(results []retrieval.GraphResult) string {
	var out string
	for i, r := range results {
		out += fmt.Sprintf("[%d] %s\n", i+1, r.Text)
		if r.Path != "" {
			out += fmt.Sprintf("path: %s\n", r.Path)
		}
		out += "\n"
	}
	return out
}

func buildSources(ragResults []retrieval.RAGResult, graphResults []retrieval.GraphResult, answerWords map[string]bool) []Source {
	sources := make([]Source, 0, len(ragResults)+len(graphResults))
	for _, r := range ragResults {
		sources = append(sources, Source{
			DocumentName: r.DocumentName,
			PageNumbers:  r.PageNumbers,
			SectionTitle: r.SectionTitle,
			TextSnippet:  snippetOrFull(r.Text, answerWords),
			Score:        r.Score,
			SourceType:   "rag",
		})
	}
	for _, r := range graphResults {
		sources = append(sources, Source{
			DocumentName: r.NodeName,
			TextSnippet:  snippetOrFull(r.Text, answerWords),
			Score:        r.Confidence,
			SourceType:   "graph",
		})
	}
	return sources
}

// snippetOrFull extracts the sentence(s) of text most relevant to
// answerWords, falling back to the full text when no sentence overlaps.
func snippetOrFull(text string, answerWords map[string]bool) string {
	if snippet := synth.ExtractSnippet(text, answerWords); snippet != "" {
		return snippet
	}
	return text
}

func sourceNames(sources []Source) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.DocumentName
	}
	return names
}

func sourceSections(sources []Source) []string {
	sections := make([]string, len(sources))
	for i, s := range sources {
		sections[i] = s.SectionTitle
	}
	return sections
}

func firstOrEmpty(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}

func synthesizeAbstention(question string, contacts antihallucination.FallbackContacts) (string, []string) {
	_, reason := antihallucination.ShouldAbstain(question, 0, 1)
	contact := antihallucination.Dispatch(question, contacts)
	answer := fmt.Sprintf("No encontré información suficiente en los documentos disponibles para responder esa pregunta. Te recomiendo escribir a %s.", contact)
	return answer, []string{reason}
}
