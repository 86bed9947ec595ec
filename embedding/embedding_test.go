package embedding

import (
	"context"
	"math"
	"testing"
)

type fakeBackend struct {
	dim       int
	fail      map[string]bool
	failMulti bool // reject any request with more than one text
	calls     int
}

func (f *fakeBackend) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failMulti && len(texts) > 1 {
		return nil, errFake
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if f.fail[t] {
			return nil, errFake
		}
		v := make([]float32, f.dim)
		for d := range v {
			v[d] = float32(len(t) + d)
		}
		out[i] = v
	}
	return out, nil
}

var errFake = fakeErr("boom")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func TestEmbedBatchNormalizes(t *testing.T) {
	p := FromLLM(&fakeBackend{dim: 4}, 4)
	vecs, err := p.EmbedBatch(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	for _, v := range vecs {
		var sumSq float64
		for _, x := range v {
			sumSq += float64(x) * float64(x)
		}
		norm := math.Sqrt(sumSq)
		if math.Abs(norm-1.0) > 1e-5 {
			t.Errorf("expected unit norm, got %f", norm)
		}
	}
}

func TestEmbedBatchFallsBackPerText(t *testing.T) {
	backend := &fakeBackend{dim: 3, failMulti: true}
	p := FromLLM(backend, 3)
	vecs, err := p.EmbedBatch(context.Background(), []string{"a", "bb"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
	if backend.calls != 3 {
		t.Errorf("expected 1 failed batch call + 2 per-text calls, got %d calls", backend.calls)
	}
}

func TestEmbedSingle(t *testing.T) {
	p := FromLLM(&fakeBackend{dim: 2}, 2)
	v, err := p.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(v) != 2 {
		t.Fatalf("expected dim 2, got %d", len(v))
	}
}
