package consulta

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the consulta engine.
type Config struct {
	// ProcessedDir holds extracted/, cleaned/, metadata/, chunks/ and
	// .pipeline_state.json, per the ingest persistence layout.
	ProcessedDir string `json:"processed_dir" yaml:"processed_dir"`

	// IndexDir holds the vector index binary and its metadata sidecar.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// GraphDir holds the serialized graph and its visualization dump.
	GraphDir string `json:"graph_dir" yaml:"graph_dir"`

	// RawDir is where the ingest CLI discovers source documents.
	RawDir string `json:"raw_dir" yaml:"raw_dir"`

	// DocumentRegistryPath points at the per-document registry file,
	// loaded as configuration rather than compiled in.
	DocumentRegistryPath string `json:"document_registry_path" yaml:"document_registry_path"`

	// LLM providers.
	Chat      LLMConfig `json:"chat" yaml:"chat"`
	Embedding LLMConfig `json:"embedding" yaml:"embedding"`
	Reranker  LLMConfig `json:"reranker" yaml:"reranker"` // optional cross-encoder

	// Chunking.
	MinChunkTokens int `json:"min_chunk_tokens" yaml:"min_chunk_tokens"`
	MaxChunkTokens int `json:"max_chunk_tokens" yaml:"max_chunk_tokens"`
	ChunkOverlap   int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// Vector index.
	EmbeddingDim    int     `json:"embedding_dim" yaml:"embedding_dim"`
	SearchThreshold float64 `json:"search_threshold" yaml:"search_threshold"`
	MMRLambda       float64 `json:"mmr_lambda" yaml:"mmr_lambda"`
	MMRFetchFactor  int     `json:"mmr_fetch_factor" yaml:"mmr_fetch_factor"`

	// Graph building.
	SkipGraph        bool `json:"skip_graph" yaml:"skip_graph"`
	GraphConcurrency int  `json:"graph_concurrency" yaml:"graph_concurrency"`
	SubgraphRadius   int  `json:"subgraph_radius" yaml:"subgraph_radius"`

	// Anti-hallucination / confidence thresholds.
	FaithfulnessEmbedThreshold float64 `json:"faithfulness_embed_threshold" yaml:"faithfulness_embed_threshold"`
	ContextPrecisionThreshold  float64 `json:"context_precision_threshold" yaml:"context_precision_threshold"`
	FaithfulnessPassScore      float64 `json:"faithfulness_pass_score" yaml:"faithfulness_pass_score"`
	AbstentionThreshold        float64 `json:"abstention_threshold" yaml:"abstention_threshold"`

	// FallbackContacts maps a keyword-dispatch bucket to an email/contact
	// string. The "default" key is required.
	FallbackContacts map[string]string `json:"fallback_contacts" yaml:"fallback_contacts"`

	// Synthesis.
	SingleContextBudget int `json:"single_context_budget" yaml:"single_context_budget"`
	HybridSideBudget    int `json:"hybrid_side_budget" yaml:"hybrid_side_budget"`

	// IngestConcurrency bounds per-document parallelism in C12.
	IngestConcurrency int `json:"ingest_concurrency" yaml:"ingest_concurrency"`

	// LogFormat names a slog handler, "json" or "text". The shipped
	// commands do not read it: cmd/server always logs JSON and cmd/ingest
	// always logs text.
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// LLMConfig configures a single LLM provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"` // ollama, lmstudio, openrouter, openai, groq, xai, gemini, custom
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// Default returns a Config with sensible defaults for local inference
// against an administrative-documents corpus.
func Default() Config {
	return Config{
		ProcessedDir: "data/processed",
		IndexDir:     "data/index",
		GraphDir:     "data/graph",
		RawDir:       "data/raw",

		DocumentRegistryPath: "config/documents.yaml",

		Chat: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.1:8b",
			BaseURL:  "http://localhost:11434",
		},
		Embedding: LLMConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},

		MinChunkTokens: 100,
		MaxChunkTokens: 512,
		ChunkOverlap:   64,

		EmbeddingDim:    384,
		SearchThreshold: 0.3,
		MMRLambda:       0.5,
		MMRFetchFactor:  4,

		GraphConcurrency: 16,
		SubgraphRadius:   2,

		FaithfulnessEmbedThreshold: 0.65,
		ContextPrecisionThreshold:  0.35,
		FaithfulnessPassScore:      0.7,
		AbstentionThreshold:        0.3,

		FallbackContacts: map[string]string{
			"default":            "info@fiuba.uba.ar",
			"enrollment":         "inscripciones@fiuba.uba.ar",
			"graduate_direction": "direccion.posgrado@fiuba.uba.ar",
		},

		SingleContextBudget: 4000,
		HybridSideBudget:    2000,

		IngestConcurrency: 8,
		LogFormat:         "text",
	}
}

// LoadFile merges a YAML config file over Default(), returning the merged
// result. Missing file is not an error: Default() is returned unchanged.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("consulta: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("consulta: parse config %s: %w", path, err)
	}
	return cfg, nil
}
