package vectorindex

import (
	"os"
	"testing"
)

func mkEntries(ids ...string) []Entry {
	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = Entry{ChunkID: id, Metadata: map[string]any{}}
	}
	return out
}

func TestSearchReturnsThresholdedTopK(t *testing.T) {
	idx := New()
	entries := mkEntries("c1", "c2", "c3")
	vectors := [][]float32{
		{1, 0, 0, 0},
		{0.9, 0.1, 0, 0},
		{0, 1, 0, 0},
	}
	if err := idx.Build(entries, vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	results := idx.Search([]float32{1, 0, 0, 0}, 2, 0.3)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Entry.ChunkID != "c1" {
		t.Errorf("first result = %s, want c1", results[0].Entry.ChunkID)
	}
	if results[1].Entry.ChunkID != "c2" {
		t.Errorf("second result = %s, want c2", results[1].Entry.ChunkID)
	}
	if results[0].Score < 0.99 {
		t.Errorf("top score = %f, want >= 0.99", results[0].Score)
	}
}

func TestSearchEmptyIndexReturnsEmptyNotError(t *testing.T) {
	idx := New()
	results := idx.Search([]float32{1, 0}, 5, 0.3)
	if len(results) != 0 {
		t.Fatal("expected empty slice")
	}
}

func TestBuildMismatchedSizesErrors(t *testing.T) {
	idx := New()
	err := idx.Build(mkEntries("a", "b"), [][]float32{{1, 0}})
	if err == nil {
		t.Fatal("expected error for mismatched sizes")
	}
}

func TestMMRNoDuplicatesAndLambdaOneMatchesTopK(t *testing.T) {
	idx := New()
	entries := mkEntries("a", "b", "c", "d")
	vectors := [][]float32{
		{1, 0, 0},
		{0.95, 0.05, 0},
		{0.9, 0.1, 0},
		{0, 0, 1},
	}
	if err := idx.Build(entries, vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	mmr := idx.SearchMMR([]float32{1, 0, 0}, 3, 16, 0.5)
	seen := map[string]bool{}
	for _, r := range mmr {
		if seen[r.Entry.ChunkID] {
			t.Fatalf("duplicate chunk in MMR result: %s", r.Entry.ChunkID)
		}
		seen[r.Entry.ChunkID] = true
	}

	plain := idx.Search([]float32{1, 0, 0}, 3, -1)
	lambdaOne := idx.SearchMMR([]float32{1, 0, 0}, 3, 16, 1.0)
	for i := range plain {
		if plain[i].Entry.ChunkID != lambdaOne[i].Entry.ChunkID {
			t.Errorf("lambda=1 order[%d] = %s, want %s matching plain top-k", i, lambdaOne[i].Entry.ChunkID, plain[i].Entry.ChunkID)
		}
	}
}

func TestSearchWithFilterListOverlap(t *testing.T) {
	idx := New()
	entries := []Entry{
		{ChunkID: "a", Metadata: map[string]any{"program_codes": []string{"MIA", "CEIA"}}},
		{ChunkID: "b", Metadata: map[string]any{"program_codes": []string{"MIAE"}}},
	}
	vectors := [][]float32{{1, 0}, {0.99, 0.01}}
	if err := idx.Build(entries, vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	results := idx.SearchWithFilter([]float32{1, 0}, 5, Filter{"program_codes": []string{"CEIA"}})
	if len(results) != 1 || results[0].Entry.ChunkID != "a" {
		t.Errorf("expected only chunk a to match filter, got %v", results)
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	idx := New()
	entries := mkEntries("x", "y")
	vectors := [][]float32{{1, 0}, {0, 1}}
	if err := idx.Build(entries, vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	dir := t.TempDir()
	if err := idx.Persist(dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	before := idx.Search([]float32{0.9, 0.1}, 2, -1)
	after := loaded.Search([]float32{0.9, 0.1}, 2, -1)
	if len(before) != len(after) {
		t.Fatalf("result count differs: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Entry.ChunkID != after[i].Entry.ChunkID {
			t.Errorf("result %d differs after round-trip: %s vs %s", i, before[i].Entry.ChunkID, after[i].Entry.ChunkID)
		}
	}

	if _, err := os.Stat(dir + "/index_meta.json"); err != nil {
		t.Errorf("expected sidecar file: %v", err)
	}
}

func TestBuildRejectsNonFiniteValues(t *testing.T) {
	idx := New()
	nan := float32(0)
	nan = nan / nan
	err := idx.Build(mkEntries("a"), [][]float32{{nan, 0}})
	if err == nil {
		t.Fatal("expected error for non-finite embedding")
	}
}
