package antihallucination

import (
	"context"
	"strings"
)

// CrossReference measures agreement between the RAG and graph contexts:
// embedding cosine similarity when an embedder is available, else
// Jaccard similarity of their tokens. When only one context is present,
// returns 0.5 (no evidence either way).
func (c *Checker) CrossReference(ctx context.Context, ragContext, graphContext string) (float64, error) {
	rag := strings.TrimSpace(ragContext)
	graph := strings.TrimSpace(graphContext)

	switch {
	case rag == "" && graph == "":
		return 0.5, nil
	case rag == "" || graph == "":
		return 0.5, nil
	}

	if c.embedder != nil {
		vecs, err := c.embedder.EmbedBatch(ctx, []string{rag, graph})
		if err != nil {
			return jaccard(rag, graph), nil
		}
		return cosine(vecs[0], vecs[1]), nil
	}
	return jaccard(rag, graph), nil
}

func jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.5
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.5
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = true
	}
	return out
}

// Confidence combines retrieval quality, faithfulness, source coverage,
// and cross-reference agreement into a single [0,1] score.
func Confidence(avgRetrieval, faithfulness float64, sourceCount int, crossRef float64) float64 {
	sourceCoverage := float64(sourceCount) / 3
	if sourceCoverage > 1 {
		sourceCoverage = 1
	}

	score := 0.30*avgRetrieval + 0.30*faithfulness + 0.15*sourceCoverage + 0.25*crossRef
	return clamp01(score)
}
