// Package vectorindex implements the Vector Index (C3): an in-memory
// cosine-similarity store over L2-normalized embeddings, with MMR
// diversification and metadata-filtered search, gob-persisted to disk.
package vectorindex

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// Entry is one indexed chunk: its metadata and its embedding vector.
type Entry struct {
	ChunkID      string
	DocumentName string
	Text         string
	Metadata     map[string]any
	Vector       []float32
}

// Result is a scored search hit.
type Result struct {
	Entry Entry
	Score float64
	Rank  int // original rank before MMR re-ordering, 0-based
}

// Index holds N vectors of dimension D, L2-normalized, with a parallel
// metadata array indexed by insertion order.
type Index struct {
	entries []Entry
	dim     int
}

// New returns an empty index.
func New() *Index {
	return &Index{}
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Build replaces the index contents. len(entries) must equal
// len(vectors); a mismatch returns an error and leaves the index as it was.
func (idx *Index) Build(entries []Entry, vectors [][]float32) error {
	if len(entries) != len(vectors) {
		return fmt.Errorf("vectorindex: build: %d entries but %d vectors", len(entries), len(vectors))
	}
	for i := range entries {
		if err := validateFinite(vectors[i]); err != nil {
			return fmt.Errorf("vectorindex: entry %d: %w", i, err)
		}
	}
	idx.entries = make([]Entry, len(entries))
	for i, e := range entries {
		e.Vector = vectors[i]
		idx.entries[i] = e
	}
	if len(vectors) > 0 {
		idx.dim = len(vectors[0])
	}
	return nil
}

// Add appends entries to the index. No deduplication by ChunkID is
// performed at this layer; callers guarantee uniqueness.
func (idx *Index) Add(entries []Entry, vectors [][]float32) error {
	if len(entries) != len(vectors) {
		return fmt.Errorf("vectorindex: add: %d entries but %d vectors", len(entries), len(vectors))
	}
	for i := range entries {
		if err := validateFinite(vectors[i]); err != nil {
			return fmt.Errorf("vectorindex: entry %d: %w", i, err)
		}
		e := entries[i]
		e.Vector = vectors[i]
		idx.entries = append(idx.entries, e)
		if idx.dim == 0 {
			idx.dim = len(e.Vector)
		}
	}
	return nil
}

func validateFinite(v []float32) error {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite value in embedding")
		}
	}
	return nil
}

// cosine computes the cosine similarity of two equal-length vectors.
// Since the index's invariant is that stored vectors are L2-normalized,
// this reduces to the inner product, but we compute it generally so a
// caller-supplied query vector need not already be normalized.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

type scored struct {
	idx   int
	score float64
}

// scoreAll computes cosine(query, entry) for every entry, returning them
// sorted by descending score. An empty index yields an empty slice.
func (idx *Index) scoreAll(query []float32) []scored {
	out := make([]scored, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = scored{idx: i, score: cosine(query, e.Vector)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

// Search returns the top-k results with score >= threshold, descending.
// An empty index returns an empty (not nil-error) result.
func (idx *Index) Search(query []float32, k int, threshold float64) []Result {
	ranked := idx.scoreAll(query)
	var out []Result
	for rank, s := range ranked {
		if len(out) >= k {
			break
		}
		if s.score < threshold {
			continue
		}
		out = append(out, Result{Entry: idx.entries[s.idx], Score: s.score, Rank: rank})
	}
	return out
}

// SearchMMR fetches the top `fetch` candidates by raw cosine similarity,
// then greedily selects k of them maximizing
// lambda*sim(q,c) - (1-lambda)*max_{j in S} sim(c,j), tie-breaking on
// higher raw relevance then lower original rank.
func (idx *Index) SearchMMR(query []float32, k, fetch int, lambda float64) []Result {
	ranked := idx.scoreAll(query)
	if fetch > len(ranked) {
		fetch = len(ranked)
	}
	candidates := ranked[:fetch]
	if len(candidates) == 0 {
		return nil
	}

	selected := make([]int, 0, k) // indices into `candidates`
	chosen := make(map[int]bool, k)

	for len(selected) < k && len(selected) < len(candidates) {
		bestPos := -1
		var bestMMR float64

		for pos, cand := range candidates {
			if chosen[pos] {
				continue
			}
			maxSimToSelected := 0.0
			for _, sPos := range selected {
				sim := cosine(idx.entries[cand.idx].Vector, idx.entries[candidates[sPos].idx].Vector)
				if sim > maxSimToSelected {
					maxSimToSelected = sim
				}
			}
			mmr := lambda*cand.score - (1-lambda)*maxSimToSelected

			if bestPos == -1 || better(mmr, bestMMR, cand, candidates[bestPos]) {
				bestPos = pos
				bestMMR = mmr
			}
		}

		selected = append(selected, bestPos)
		chosen[bestPos] = true
	}

	out := make([]Result, 0, len(selected))
	for _, pos := range selected {
		cand := candidates[pos]
		out = append(out, Result{Entry: idx.entries[cand.idx], Score: cand.score, Rank: pos})
	}
	return out
}

// better reports whether candidate a beats the current best b, applying
// the MMR tie-break: higher raw relevance first, then lower original
// rank (earlier position in the fetch-ordered candidate list).
func better(mmrA, mmrB float64, a, b scored) bool {
	const eps = 1e-12
	if mmrA > mmrB+eps {
		return true
	}
	if mmrA < mmrB-eps {
		return false
	}
	if a.score != b.score {
		return a.score > b.score
	}
	return false // equal score and rank order is preserved by candidate position
}

// Filter is a metadata equality/containment predicate for
// SearchWithFilter. A filter value matching a list-valued metadata field
// succeeds if any element overlaps; scalar fields require equality.
type Filter map[string]any

func matches(meta map[string]any, filter Filter) bool {
	for key, want := range filter {
		got, ok := meta[key]
		if !ok {
			return false
		}
		if !valueMatches(got, want) {
			return false
		}
	}
	return true
}

func valueMatches(got, want any) bool {
	wantList, wantIsList := toStringSlice(want)
	gotList, gotIsList := toStringSlice(got)

	switch {
	case gotIsList && wantIsList:
		for _, g := range gotList {
			for _, w := range wantList {
				if g == w {
					return true
				}
			}
		}
		return false
	case gotIsList && !wantIsList:
		ws := fmt.Sprint(want)
		for _, g := range gotList {
			if g == ws {
				return true
			}
		}
		return false
	case !gotIsList && wantIsList:
		gs := fmt.Sprint(got)
		for _, w := range wantList {
			if gs == w {
				return true
			}
		}
		return false
	default:
		return fmt.Sprint(got) == fmt.Sprint(want)
	}
}

func toStringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, len(t))
		for i, x := range t {
			out[i] = fmt.Sprint(x)
		}
		return out, true
	default:
		return nil, false
	}
}

// SearchWithFilter over-fetches by cosine similarity, then post-filters
// by metadata, stopping once k results pass the filter.
func (idx *Index) SearchWithFilter(query []float32, k int, filter Filter) []Result {
	ranked := idx.scoreAll(query)
	var out []Result
	for rank, s := range ranked {
		if len(out) >= k {
			break
		}
		e := idx.entries[s.idx]
		if !matches(e.Metadata, filter) {
			continue
		}
		out = append(out, Result{Entry: e, Score: s.score, Rank: rank})
	}
	return out
}

// gobIndex is the on-disk representation used by Persist/Load.
type gobIndex struct {
	Entries []Entry
	Dim     int
}

// Persist writes the index as a gob-encoded binary file plus a JSON
// metadata sidecar (entry count and dimension, for quick inspection
// without decoding the binary).
func (idx *Index) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobIndex{Entries: idx.entries, Dim: idx.dim}); err != nil {
		return fmt.Errorf("vectorindex: encoding: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.gob"), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("vectorindex: writing index: %w", err)
	}

	sidecar := fmt.Sprintf(`{"count":%d,"dim":%d}`, len(idx.entries), idx.dim)
	if err := os.WriteFile(filepath.Join(dir, "index_meta.json"), []byte(sidecar), 0o644); err != nil {
		return fmt.Errorf("vectorindex: writing sidecar: %w", err)
	}
	return nil
}

// Load reads an index previously written by Persist.
func Load(dir string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, "index.gob"))
	if err != nil {
		return nil, fmt.Errorf("vectorindex: reading index: %w", err)
	}
	var gi gobIndex
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&gi); err != nil {
		return nil, fmt.Errorf("vectorindex: decoding: %w", err)
	}
	return &Index{entries: gi.Entries, dim: gi.Dim}, nil
}
