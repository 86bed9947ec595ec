package retrieval

import (
	"context"
	"testing"

	"github.com/fiuba-lse/consulta/vectorindex"
)

type fakeEmbedder struct{ dim int }

func (f *fakeEmbedder) Dim() int { return f.dim }
func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "query" {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}
func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = f.Embed(context.Background(), t)
	}
	return out, nil
}

func TestDenseSearchReturnsTopK(t *testing.T) {
	idx := vectorindex.New()
	entries := []vectorindex.Entry{
		{ChunkID: "a", DocumentName: "doc1", Text: "hola", Metadata: map[string]any{}},
		{ChunkID: "b", DocumentName: "doc2", Text: "chau", Metadata: map[string]any{}},
	}
	vectors := [][]float32{{1, 0}, {0, 1}}
	if err := idx.Build(entries, vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	d := NewDense(&fakeEmbedder{dim: 2}, idx, nil)
	results, err := d.Search(context.Background(), "query", 1, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ChunkID != "a" {
		t.Errorf("results = %v, want [a]", results)
	}
}

func TestDenseSearchWithProgramFilter(t *testing.T) {
	idx := vectorindex.New()
	entries := []vectorindex.Entry{
		{ChunkID: "a", Metadata: map[string]any{"program_codes": []string{"MIA"}}},
		{ChunkID: "b", Metadata: map[string]any{"program_codes": []string{"CEIA"}}},
	}
	vectors := [][]float32{{1, 0}, {0.9, 0.1}}
	if err := idx.Build(entries, vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	d := NewDense(&fakeEmbedder{dim: 2}, idx, nil)
	results, err := d.Search(context.Background(), "query", 5, "CEIA")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ChunkID != "b" {
		t.Errorf("results = %v, want [b]", results)
	}
}
