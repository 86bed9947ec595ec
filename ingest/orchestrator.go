// Package ingest implements the Ingest Orchestrator (C12): the per-file
// extracting->cleaning->tagging->chunking state machine, the post-pass
// vector-index rebuild, and the (non-fatal) graph rebuild.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fiuba-lse/consulta/chunker"
	"github.com/fiuba-lse/consulta/embedding"
	"github.com/fiuba-lse/consulta/entity"
	"github.com/fiuba-lse/consulta/extractor"
	"github.com/fiuba-lse/consulta/graph"
	"github.com/fiuba-lse/consulta/metadata"
	"github.com/fiuba-lse/consulta/relation"
	"github.com/fiuba-lse/consulta/store"
	"github.com/fiuba-lse/consulta/vectorindex"
)

// Options configures a single Run.
type Options struct {
	// Force bypasses the content-hash skip check.
	Force bool
	// Doc restricts the run to a single document stem; empty means all.
	Doc string
	// SkipGraph omits the entity/relation/graph rebuild pass.
	SkipGraph bool
	// Concurrency bounds per-document parallelism; 0 means NumCPU.
	Concurrency int
}

// FileResult is the terminal outcome for one discovered document.
type FileResult struct {
	Name    string
	Stage   store.Stage
	Skipped bool
	Err     error
}

// Result is the outcome of one full Run.
type Result struct {
	Files      []FileResult
	ChunkCount int
	GraphNodes int
	GraphErr   error // non-fatal: index build still succeeded
}

// Orchestrator wires the extraction, tagging, chunking, embedding, and
// graph-building collaborators into the per-document state machine.
type Orchestrator struct {
	store      *store.Store
	extractors *extractor.Registry
	tagger     *metadata.Tagger
	chunker    *chunker.Chunker
	embedder   embedding.Provider
	indexDir   string
	graphDir   string
}

// New builds an Orchestrator. indexDir and graphDir are where the
// post-pass vector index and graph are persisted.
func New(st *store.Store, extractors *extractor.Registry, tagger *metadata.Tagger, ck *chunker.Chunker, embedder embedding.Provider, indexDir, graphDir string) *Orchestrator {
	return &Orchestrator{
		store:      st,
		extractors: extractors,
		tagger:     tagger,
		chunker:    ck,
		embedder:   embedder,
		indexDir:   indexDir,
		graphDir:   graphDir,
	}
}

// Run discovers every file under rawDir, drives each through the state
// machine (concurrently, bounded by opts.Concurrency), then rebuilds the
// vector index from the full persisted chunk set and, unless disabled,
// the entity/relation graph. A document-level failure does not stop the
// run: it is recorded in Result.Files and the remaining documents still
// process.
func (o *Orchestrator) Run(ctx context.Context, rawDir string, opts Options) (Result, error) {
	paths, err := discover(rawDir, opts.Doc)
	if err != nil {
		return Result{}, err
	}
	if len(paths) == 0 {
		return Result{}, fmt.Errorf("ingest: no input documents in %s", rawDir)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			results[i] = o.processFile(gctx, p, opts.Force)
			return nil
		})
	}
	// g.Go's closures never return an error themselves (per-document
	// failures are recorded in results, not propagated), so Wait only
	// reports context cancellation.
	if err := g.Wait(); err != nil {
		return Result{Files: results}, fmt.Errorf("ingest: run cancelled: %w", err)
	}

	chunks, err := o.store.AllChunks()
	if err != nil {
		return Result{Files: results}, fmt.Errorf("ingest: reading chunk set: %w", err)
	}
	if err := o.rebuildIndex(ctx, chunks); err != nil {
		return Result{Files: results, ChunkCount: len(chunks)}, fmt.Errorf("ingest: rebuilding index: %w", err)
	}

	res := Result{Files: results, ChunkCount: len(chunks)}
	if !opts.SkipGraph {
		nodes, gerr := o.rebuildGraph(chunks)
		res.GraphNodes = nodes
		res.GraphErr = gerr
	}
	return res, nil
}

// discover lists every non-directory entry under rawDir, optionally
// restricted to a single stem.
func discover(rawDir, onlyStem string) ([]string, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, fmt.Errorf("ingest: reading raw dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if onlyStem != "" && stemOf(e.Name()) != onlyStem {
			continue
		}
		paths = append(paths, filepath.Join(rawDir, e.Name()))
	}
	return paths, nil
}

func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// processFile drives one document through
// extracting -> cleaning -> tagging -> chunking, skipping if the content
// hash is unchanged and force is false. Any stage error transitions the
// document to failed and returns, without affecting other documents.
func (o *Orchestrator) processFile(ctx context.Context, path string, force bool) FileResult {
	name := filepath.Base(path)
	key := stemOf(name)

	hash, err := fileHash(path)
	if err != nil {
		return o.fail(key, err)
	}

	if !o.store.NeedsReprocessing(key, hash, force) {
		return FileResult{Name: name, Stage: store.StageSuccess, Skipped: true}
	}

	if err := o.store.SetStage(key, store.StageExtracting, hash); err != nil {
		return o.fail(key, err)
	}
	backend, err := o.extractors.For(path)
	if err != nil {
		return o.fail(key, err)
	}
	extracted, err := backend.Extract(ctx, path)
	if err != nil {
		return o.fail(key, err)
	}
	if err := o.store.WriteExtracted(name, extracted.RawText); err != nil {
		return o.fail(key, err)
	}

	if err := o.store.SetStage(key, store.StageCleaning, hash); err != nil {
		return o.fail(key, err)
	}
	cleaned := cleanText(extracted.RawText)
	if err := o.store.WriteCleaned(name, cleaned); err != nil {
		return o.fail(key, err)
	}

	if err := o.store.SetStage(key, store.StageTagging, hash); err != nil {
		return o.fail(key, err)
	}
	docMeta := o.tagger.TagDocument(name, cleaned, extracted.ClassHint)
	if err := o.store.WriteMetadata(name, docMeta); err != nil {
		return o.fail(key, err)
	}

	if err := o.store.SetStage(key, store.StageChunking, hash); err != nil {
		return o.fail(key, err)
	}
	chunks := o.chunker.Chunk(name, docMeta.DocumentType, cleaned)
	for i := range chunks {
		chunks[i].Metadata = o.tagger.TagChunk(chunks[i].Text, docMeta, chunks[i].Metadata)
	}
	if err := o.store.WriteChunks(name, chunks); err != nil {
		return o.fail(key, err)
	}

	if err := o.store.SetStage(key, store.StageSuccess, hash); err != nil {
		return o.fail(key, err)
	}
	return FileResult{Name: name, Stage: store.StageSuccess}
}

func (o *Orchestrator) fail(key string, err error) FileResult {
	_ = o.store.SetFailed(key, err)
	return FileResult{Name: key, Stage: store.StageFailed, Err: err}
}

// blankLines collapses three or more newlines (with optional trailing
// whitespace on the blank lines) down to a single paragraph break.
var blankLines = regexp.MustCompile(`\n[ \t]*\n[ \t]*(\n[ \t]*)*`)

// cleanText normalizes extractor output: CRLF/CR to LF, trailing
// whitespace trimmed per line, runs of blank lines collapsed to one.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	text = strings.Join(lines, "\n")

	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// rebuildIndex embeds every persisted chunk and replaces the on-disk
// vector index. A corpus with no chunks yet is a no-op, not an error.
func (o *Orchestrator) rebuildIndex(ctx context.Context, chunks []chunker.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}

	entries := make([]vectorindex.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = vectorindex.Entry{
			ChunkID:      c.ChunkID,
			DocumentName: c.DocumentName,
			Text:         c.Text,
			Vector:       vectors[i],
			Metadata: map[string]any{
				"section_title": c.SectionTitle,
				"page_numbers":  c.PageNumbers,
				"program_codes": c.Metadata.ProgramCodes,
			},
		}
	}

	idx := vectorindex.New()
	if err := idx.Build(entries, vectors); err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	return idx.Persist(o.indexDir)
}

// rebuildGraph re-derives entities and relations from the full cleaned
// corpus (grouped by document, since relation axioms reason over a
// document's full text) and persists the resulting graph. Community
// detection is attempted but its failure does not fail the rebuild: the
// graph itself is still usable for subgraph and shortest-path queries.
func (o *Orchestrator) rebuildGraph(chunks []chunker.Chunk) (int, error) {
	byDoc := make(map[string][]chunker.Chunk)
	var order []string
	for _, c := range chunks {
		if _, ok := byDoc[c.DocumentName]; !ok {
			order = append(order, c.DocumentName)
		}
		byDoc[c.DocumentName] = append(byDoc[c.DocumentName], c)
	}

	g := graph.New()
	for _, doc := range order {
		var b strings.Builder
		for _, c := range byDoc[doc] {
			b.WriteString(c.Text)
			b.WriteString("\n\n")
		}
		text := b.String()

		entities := entity.ExtractAll(text, doc)
		for _, e := range entities {
			g.AddEntity(e)
		}
		for _, r := range relation.MapAll(entities, text, doc) {
			g.AddRelation(r)
		}
	}

	communities, cerr := detectCommunitiesSafe(g)
	if cerr != nil {
		slog.Warn("ingest: community detection failed, graph still persisted", "error", cerr)
	}

	if err := g.Persist(o.graphDir); err != nil {
		return g.Len(), fmt.Errorf("persisting graph: %w", err)
	}
	if communities != nil {
		if err := writeVisualizationDump(o.graphDir, g, communities); err != nil {
			slog.Warn("ingest: writing graph visualization dump failed", "error", err)
		}
	}
	return g.Len(), cerr
}

// detectCommunitiesSafe isolates the modularity pass: it is a pure
// structural convenience for visualization, not load-bearing for any C8
// query path, so a panic here is recovered rather than propagated.
func detectCommunitiesSafe(g *graph.Graph) (communities []graph.Community, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("community detection panic: %v", r)
		}
	}()
	return graph.DetectCommunities(g), nil
}

// visualizationDump is a human-readable JSON rendering of the graph's
// stats and detected communities, written alongside the binary gob so it
// can be inspected without decoding the gob format.
type visualizationDump struct {
	Stats       graph.Stats       `json:"stats"`
	Communities []graph.Community `json:"communities"`
}

func writeVisualizationDump(dir string, g *graph.Graph, communities []graph.Community) error {
	dump := visualizationDump{Stats: g.Statistics(), Communities: communities}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "graph_visualization.json"), data, 0o644)
}

// fileHash computes the SHA-256 hash of a file's content.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
