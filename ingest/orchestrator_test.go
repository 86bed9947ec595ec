package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fiuba-lse/consulta/chunker"
	"github.com/fiuba-lse/consulta/extractor"
	"github.com/fiuba-lse/consulta/metadata"
	"github.com/fiuba-lse/consulta/store"
)

type fakeEmbedder struct{ dim int }

func (f *fakeEmbedder) Dim() int { return f.dim }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, f.dim)
	v[0] = 1
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i], _ = f.Embed(ctx, texts[i])
	}
	return out, nil
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, string) {
	t.Helper()
	dir := t.TempDir()
	processedDir := filepath.Join(dir, "processed")
	indexDir := filepath.Join(dir, "index")
	graphDir := filepath.Join(dir, "graph")
	rawDir := filepath.Join(dir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatalf("mkdir raw: %v", err)
	}

	st, err := store.New(processedDir)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	orch := New(st, extractor.NewRegistry(), metadata.New(metadata.Default()),
		chunker.New(chunker.Config{}), &fakeEmbedder{dim: 4}, indexDir, graphDir)
	return orch, rawDir
}

func TestCleanTextCollapsesBlankLinesAndTrailingSpace(t *testing.T) {
	in := "Primera linea.   \r\n\r\n\r\n\r\nSegunda linea.\r\n"
	got := cleanText(in)
	want := "Primera linea.\n\nSegunda linea."
	if got != want {
		t.Errorf("cleanText = %q, want %q", got, want)
	}
}

func TestRunProcessesNewDocumentThroughAllStages(t *testing.T) {
	orch, rawDir := newTestOrchestrator(t)
	if err := os.WriteFile(filepath.Join(rawDir, "faq.txt"), []byte("¿Cuál es el plazo de inscripción a la MIA? El plazo es de 30 días."), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	res, err := orch.Run(context.Background(), rawDir, Options{SkipGraph: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Files) != 1 || res.Files[0].Err != nil {
		t.Fatalf("expected one successful file, got %+v", res.Files)
	}
	if res.ChunkCount == 0 {
		t.Error("expected at least one chunk to be persisted")
	}
}

func TestRunSkipsUnchangedDocumentOnSecondPass(t *testing.T) {
	orch, rawDir := newTestOrchestrator(t)
	if err := os.WriteFile(filepath.Join(rawDir, "faq.txt"), []byte("Contenido estable sin cambios."), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := orch.Run(context.Background(), rawDir, Options{SkipGraph: true}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	res, err := orch.Run(context.Background(), rawDir, Options{SkipGraph: true})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !res.Files[0].Skipped {
		t.Error("expected second run to skip the unchanged document")
	}
}

func TestRunForceBypassesSkip(t *testing.T) {
	orch, rawDir := newTestOrchestrator(t)
	if err := os.WriteFile(filepath.Join(rawDir, "faq.txt"), []byte("Contenido estable."), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := orch.Run(context.Background(), rawDir, Options{SkipGraph: true}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	res, err := orch.Run(context.Background(), rawDir, Options{SkipGraph: true, Force: true})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Files[0].Skipped {
		t.Error("expected --force to bypass the hash skip")
	}
}

func TestRunNoInputsErrors(t *testing.T) {
	orch, rawDir := newTestOrchestrator(t)
	if _, err := orch.Run(context.Background(), rawDir, Options{}); err == nil {
		t.Error("expected an error for an empty raw directory")
	}
}

func TestRunRebuildsGraphFromExtractedEntities(t *testing.T) {
	orch, rawDir := newTestOrchestrator(t)
	text := "La Maestría en Inteligencia Artificial (MIA) requiere haberse graduado de la Carrera de Especialización en Inteligencia Artificial (CEIA)."
	if err := os.WriteFile(filepath.Join(rawDir, "regulation.txt"), []byte(text), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	res, err := orch.Run(context.Background(), rawDir, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.GraphNodes == 0 {
		t.Error("expected the graph rebuild to find at least one node")
	}
}
