package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fiuba-lse/consulta/llm"
)

// rerankPrompt asks the chat collaborator to score one candidate passage's
// relevance to query on a 0-10 scale. Kept to a single number so the
// response is cheap to parse without a structured-output round trip.
const rerankPrompt = `Pregunta: %s

Pasaje:
%s

En una escala de 0 a 10, ¿qué tan relevante es este pasaje para responder la pregunta? Respondé únicamente con el número.`

var scorePattern = regexp.MustCompile(`\d+(\.\d+)?`)

// LLMReranker is an optional cross-encoder-style reranker backed by a
// chat-style LLM collaborator instead of a dedicated cross-encoder model:
// it is wired in only when a reranker provider is configured, and the LLM
// provider is the only scoring collaborator this engine always has
// available. A transport failure degrades to the unreranked order rather
// than failing the search.
type LLMReranker struct {
	chat llm.Provider
}

// NewLLMReranker builds a reranker backed by chat.
func NewLLMReranker(chat llm.Provider) *LLMReranker {
	return &LLMReranker{chat: chat}
}

// Rerank scores every candidate against query and returns them sorted by
// score descending, with Score replaced by the reranker's own scale
// (0-10, left unnormalized since it only governs relative order here).
func (r *LLMReranker) Rerank(ctx context.Context, query string, candidates []RAGResult) ([]RAGResult, error) {
	out := make([]RAGResult, len(candidates))
	copy(out, candidates)

	for i := range out {
		score, err := r.score(ctx, query, out[i].Text)
		if err != nil {
			continue // degrade: keep the vector score for this candidate
		}
		out[i].Score = score
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (r *LLMReranker) score(ctx context.Context, query, passage string) (float64, error) {
	resp, err := r.chat.Generate(ctx, fmt.Sprintf(rerankPrompt, query, passage), "")
	if err != nil {
		return 0, err
	}
	if strings.HasPrefix(resp, "[Error") {
		return 0, nil
	}
	match := scorePattern.FindString(resp)
	if match == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, nil
	}
	return v, nil
}
