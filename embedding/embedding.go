// Package embedding implements the Embedding Provider collaborator: a
// text-to-vector interface, L2-normalized, with a fixed dimension chosen
// at construction.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/fiuba-lse/consulta/llm"
)

// Provider embeds text into L2-normalized vectors of a fixed dimension.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dim() int
}

// fromLLM adapts an llm.Provider that also implements llm.Embedder (e.g.
// ollama, openai) into an embedding.Provider, normalizing and batching
// with per-text fallback on batch failure, per goreason.go's embedChunks
// pattern.
type fromLLM struct {
	backend llm.Embedder
	dim     int
}

// FromLLM wraps backend as an embedding.Provider. dim is the expected
// output dimension reported by Dim; returned vectors are not checked
// against it.
func FromLLM(backend llm.Embedder, dim int) Provider {
	return &fromLLM{backend: backend, dim: dim}
}

func (p *fromLLM) Dim() int { return p.dim }

func (p *fromLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("embedding: empty result for single text")
	}
	return out[0], nil
}

const batchSize = 32

// EmbedBatch embeds texts in fixed-size batches. A batch failure falls
// back to embedding each text individually so one oversized or malformed
// text does not lose the entire batch.
func (p *fromLLM) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))

	for i := 0; i < len(texts); i += batchSize {
		end := min(i+batchSize, len(texts))
		batch := texts[i:end]

		embeddings, err := p.backend.EmbedTexts(ctx, batch)
		if err != nil || len(embeddings) != len(batch) {
			for j, text := range batch {
				single, serr := p.backend.EmbedTexts(ctx, []string{text})
				if serr != nil || len(single) == 0 {
					return nil, fmt.Errorf("embedding text %d: %w", i+j, serr)
				}
				result[i+j] = normalize(single[0])
			}
			continue
		}

		for j, emb := range embeddings {
			result[i+j] = normalize(emb)
		}
	}

	return result, nil
}

// normalize L2-normalizes v in place and returns it.
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
