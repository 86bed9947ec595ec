// Package retrieval implements the Dense Retriever (C7) and Graph
// Retriever (C8): the two independent retrieval arms merged by the
// Hybrid Fuser (C9).
package retrieval

import (
	"context"
	"fmt"

	"github.com/fiuba-lse/consulta/embedding"
	"github.com/fiuba-lse/consulta/vectorindex"
)

// RAGResult is one dense-retrieval hit, ready for rendering or fusion.
type RAGResult struct {
	ChunkID      string
	DocumentName string
	SectionTitle string
	Text         string
	Score        float64
	PageNumbers  []int
}

// Reranker re-scores (query, text) candidate pairs. Cross-encoder-backed
// implementations call out to a model; absent a reranker, Dense truncates.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []RAGResult) ([]RAGResult, error)
}

// Dense is the C7 pipeline: embed the query, vector search (MMR by
// default, metadata-filtered when a program filter is given), then
// optionally rerank.
type Dense struct {
	embedder embedding.Provider
	index    *vectorindex.Index
	reranker Reranker
}

// NewDense constructs a Dense retriever. reranker may be nil.
func NewDense(embedder embedding.Provider, index *vectorindex.Index, reranker Reranker) *Dense {
	return &Dense{embedder: embedder, index: index, reranker: reranker}
}

// Search embeds query and returns the top k chunks. When programFilter
// is non-empty, search is metadata-filtered on program_codes instead of
// MMR-diversified.
func (d *Dense) Search(ctx context.Context, query string, k int, programFilter string) ([]RAGResult, error) {
	vec, err := d.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embedding query: %w", err)
	}

	fetchK := 4 * k
	want := k
	if d.reranker != nil {
		want = fetchK
	}
	var hits []vectorindex.Result
	if programFilter != "" {
		hits = d.index.SearchWithFilter(vec, want, vectorindex.Filter{"program_codes": []string{programFilter}})
	} else {
		hits = d.index.SearchMMR(vec, want, fetchK, 0.5)
	}

	results := toRAGResults(hits)
	if d.reranker == nil || len(results) <= k {
		return truncate(results, k), nil
	}

	reranked, err := d.reranker.Rerank(ctx, query, results)
	if err != nil {
		return truncate(results, k), nil
	}
	return truncate(reranked, k), nil
}

func toRAGResults(hits []vectorindex.Result) []RAGResult {
	out := make([]RAGResult, len(hits))
	for i, h := range hits {
		out[i] = RAGResult{
			ChunkID:      h.Entry.ChunkID,
			DocumentName: h.Entry.DocumentName,
			Text:         h.Entry.Text,
			Score:        h.Score,
			SectionTitle: stringMeta(h.Entry.Metadata, "section_title"),
			PageNumbers:  intsMeta(h.Entry.Metadata, "page_numbers"),
		}
	}
	return out
}

func stringMeta(meta map[string]any, key string) string {
	v, _ := meta[key].(string)
	return v
}

func intsMeta(meta map[string]any, key string) []int {
	raw, ok := meta[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []int:
		return v
	case []any:
		out := make([]int, 0, len(v))
		for _, x := range v {
			if f, ok := x.(float64); ok {
				out = append(out, int(f))
			}
		}
		return out
	default:
		return nil
	}
}

func truncate(results []RAGResult, k int) []RAGResult {
	if len(results) > k {
		return results[:k]
	}
	return results
}
