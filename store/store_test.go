package store

import (
	"testing"

	"github.com/fiuba-lse/consulta/chunker"
	"github.com/fiuba-lse/consulta/metadata"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return s
}

func TestNewCreatesLayout(t *testing.T) {
	s := newTestStore(t)
	if err := s.WriteExtracted("doc.pdf", "hello"); err != nil {
		t.Fatalf("WriteExtracted: %v", err)
	}
	got, err := s.ReadExtracted("doc.pdf")
	if err != nil {
		t.Fatalf("ReadExtracted: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want hello", got)
	}
}

func TestStageTransitionsAreAtomicallyPersisted(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetStage("doc", StageExtracting, "hash1"); err != nil {
		t.Fatalf("SetStage: %v", err)
	}

	reopened, err := New(s.root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	ds, ok := reopened.State("doc")
	if !ok {
		t.Fatal("expected persisted state to survive reopen")
	}
	if ds.Stage != StageExtracting || ds.ContentHash != "hash1" {
		t.Errorf("state = %+v", ds)
	}
}

func TestNeedsReprocessing(t *testing.T) {
	s := newTestStore(t)
	if !s.NeedsReprocessing("doc", "h1", false) {
		t.Error("unprocessed document should need reprocessing")
	}

	if err := s.SetStage("doc", StageSuccess, "h1"); err != nil {
		t.Fatalf("SetStage: %v", err)
	}
	if s.NeedsReprocessing("doc", "h1", false) {
		t.Error("unchanged successful document should not need reprocessing")
	}
	if s.NeedsReprocessing("doc", "h2", false) == false {
		t.Error("changed content hash should need reprocessing")
	}
	if !s.NeedsReprocessing("doc", "h1", true) {
		t.Error("force should always need reprocessing")
	}
}

func TestChunksRoundTrip(t *testing.T) {
	s := newTestStore(t)
	chunks := []chunker.Chunk{{ChunkID: "c1", Text: "hola"}}
	if err := s.WriteChunks("doc.pdf", chunks); err != nil {
		t.Fatalf("WriteChunks: %v", err)
	}
	got, err := s.ReadChunks("doc.pdf")
	if err != nil {
		t.Fatalf("ReadChunks: %v", err)
	}
	if len(got) != 1 || got[0].ChunkID != "c1" {
		t.Errorf("got %v", got)
	}

	all, err := s.AllChunks()
	if err != nil {
		t.Fatalf("AllChunks: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 chunk across all documents, got %d", len(all))
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	s := newTestStore(t)
	meta := metadata.DocumentMetadata{ProgramCodes: []string{"MIA"}}
	if err := s.WriteMetadata("doc.pdf", meta); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	got, err := s.ReadMetadata("doc.pdf")
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if len(got.ProgramCodes) != 1 || got.ProgramCodes[0] != "MIA" {
		t.Errorf("got %+v", got)
	}
}

func TestDeleteRemovesArtifactsAndState(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetStage("doc", StageSuccess, "h1"); err != nil {
		t.Fatalf("SetStage: %v", err)
	}
	if err := s.WriteChunks("doc.pdf", []chunker.Chunk{{ChunkID: "c1"}}); err != nil {
		t.Fatalf("WriteChunks: %v", err)
	}
	if err := s.Delete("doc.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.State("doc"); ok {
		t.Error("expected state to be removed")
	}
	if _, err := s.ReadChunks("doc.pdf"); err == nil {
		t.Error("expected chunks file to be removed")
	}
}
