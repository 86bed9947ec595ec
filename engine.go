package consulta

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fiuba-lse/consulta/antihallucination"
	"github.com/fiuba-lse/consulta/chunker"
	"github.com/fiuba-lse/consulta/embedding"
	"github.com/fiuba-lse/consulta/extractor"
	"github.com/fiuba-lse/consulta/graph"
	"github.com/fiuba-lse/consulta/ingest"
	"github.com/fiuba-lse/consulta/llm"
	"github.com/fiuba-lse/consulta/metadata"
	"github.com/fiuba-lse/consulta/retrieval"
	"github.com/fiuba-lse/consulta/store"
	"github.com/fiuba-lse/consulta/synth"
	"github.com/fiuba-lse/consulta/vectorindex"
)

// Engine is the query-time and ingest-time entry point: it owns the
// chunking, tagging, vector, graph, retrieval, verification, and
// synthesis collaborators and wires them into the ingest and query
// flows.
type Engine struct {
	cfg Config

	store      *store.Store
	extractors *extractor.Registry
	tagger     *metadata.Tagger
	chunker    *chunker.Chunker
	embedder   embedding.Provider
	chat       llm.Provider

	mu    sync.RWMutex
	index *vectorindex.Index
	gr    *graph.Graph

	reranker retrieval.Reranker
	dense    *retrieval.Dense
	graphRet *retrieval.Graph
	checker  *antihallucination.Checker
	synth    *synth.Synthesizer
	contacts antihallucination.FallbackContacts
}

// New builds an Engine from cfg: it loads the persisted index and graph
// if present (an absent index/graph is not an error — a fresh deployment
// starts corpus-empty until the first ingest run), and constructs every
// retrieval/verification/synthesis collaborator around them.
func New(cfg Config) (*Engine, error) {
	chat, err := llm.NewProvider(llm.Config(cfg.Chat))
	if err != nil {
		return nil, fmt.Errorf("consulta: chat provider: %w", err)
	}

	embedProvider, err := llm.NewProvider(llm.Config(cfg.Embedding))
	if err != nil {
		return nil, fmt.Errorf("consulta: embedding provider: %w", err)
	}
	embedBackend, ok := embedProvider.(llm.Embedder)
	if !ok {
		return nil, fmt.Errorf("consulta: embedding provider %q does not serve embeddings", cfg.Embedding.Provider)
	}
	embedder := embedding.FromLLM(embedBackend, cfg.EmbeddingDim)

	registry, err := metadata.LoadRegistryFile(cfg.DocumentRegistryPath)
	if err != nil {
		return nil, fmt.Errorf("consulta: loading document registry: %w", err)
	}

	st, err := store.New(cfg.ProcessedDir)
	if err != nil {
		return nil, fmt.Errorf("consulta: opening store: %w", err)
	}

	index, err := vectorindex.Load(cfg.IndexDir)
	if err != nil {
		index = vectorindex.New()
	}
	g, err := graph.Load(cfg.GraphDir)
	if err != nil {
		g = graph.New()
	}

	var reranker retrieval.Reranker
	if cfg.Reranker.Provider != "" {
		if rerankChat, err := llm.NewProvider(llm.Config(cfg.Reranker)); err == nil {
			reranker = retrieval.NewLLMReranker(rerankChat)
		}
	}

	contacts := antihallucination.FallbackContacts(cfg.FallbackContacts)
	if len(contacts) == 0 {
		contacts = antihallucination.DefaultFallbackContacts()
	}

	e := &Engine{
		cfg:        cfg,
		store:      st,
		extractors: extractor.NewRegistry(),
		tagger:     metadata.New(registry),
		chunker: chunker.New(chunker.Config{
			MinTokens: cfg.MinChunkTokens,
			MaxTokens: cfg.MaxChunkTokens,
			Overlap:   cfg.ChunkOverlap,
		}),
		embedder: embedder,
		chat:     chat,
		index:    index,
		gr:       g,
		reranker: reranker,
		checker:  antihallucination.NewChecker(embedder, chat),
		synth:    synth.New(chat),
		contacts: contacts,
	}
	e.dense = retrieval.NewDense(embedder, index, reranker)
	e.graphRet = retrieval.NewGraph(g)
	return e, nil
}

// Ingest runs the Ingest Orchestrator (C12) against rawDir and, on
// success, reloads the Engine's in-memory index and graph from the
// freshly persisted artifacts so subsequent queries see the new corpus.
func (e *Engine) Ingest(ctx context.Context, rawDir string, opts ingest.Options) (ingest.Result, error) {
	orch := ingest.New(e.store, e.extractors, e.tagger, e.chunker, e.embedder, e.cfg.IndexDir, e.cfg.GraphDir)
	res, err := orch.Run(ctx, rawDir, opts)
	if err != nil {
		return res, err
	}

	index, ierr := vectorindex.Load(e.cfg.IndexDir)
	if ierr != nil {
		return res, NewInternal("reloading index after ingest", ierr)
	}
	var g *graph.Graph
	if !opts.SkipGraph {
		var gerr error
		g, gerr = graph.Load(e.cfg.GraphDir)
		if gerr != nil {
			return res, NewInternal("reloading graph after ingest", gerr)
		}
	}

	e.mu.Lock()
	e.index = index
	e.dense = retrieval.NewDense(e.embedder, index, e.reranker)
	if g != nil {
		e.gr = g
		e.graphRet = retrieval.NewGraph(g)
	}
	e.mu.Unlock()
	return res, nil
}

// Close releases resources held by the engine. Nothing here currently
// requires explicit teardown (no network listeners or file handles are
// held across calls), but the method is kept so callers have a single
// guaranteed-release point as the engine grows collaborators that do.
func (e *Engine) Close() error { return nil }

// Health reports the engine's operational snapshot for the /health
// endpoint.
type Health struct {
	Status          string `json:"status"`
	LLMAvailable    bool   `json:"llm_available"`
	DocumentsLoaded int    `json:"documents_loaded"`
	IndexSize       int    `json:"index_size"`
	GraphNodes      int    `json:"graph_nodes"`
}

// Health pings the chat collaborator with a trivial prompt and reports
// corpus size. A chat failure does not change Status: the engine can
// still answer graph-only queries with the LLM down.
func (e *Engine) Health(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	llmOK := true
	if resp, err := e.chat.Generate(ctx, "ping", ""); err != nil || strings.HasPrefix(resp, "[Error") {
		llmOK = false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return Health{
		Status:          "ok",
		LLMAvailable:    llmOK,
		DocumentsLoaded: len(e.store.Documents()),
		IndexSize:       e.index.Len(),
		GraphNodes:      e.gr.Len(),
	}
}
