// Package llm implements the LLM Provider collaborator: a chat-style
// text generation interface with multiple selectable backends. It never
// decides domain semantics — callers (C11, C12) own prompts and parsing.
package llm

import (
	"context"
	"fmt"
)

// Message is one turn in a chat history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the LLM collaborator contract. A transport-level failure
// (timeout, non-2xx, malformed body) is returned as a Go error. All
// backends share one OpenAI-compatible client, which also returns an
// error when the provider reports finish_reason "content_filter"
// (content filtered) or "length" (truncated at max_tokens).
type Provider interface {
	// Generate sends a single prompt with an optional system prompt.
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
	// GenerateWithHistory sends a full message history.
	GenerateWithHistory(ctx context.Context, messages []Message, systemPrompt string) (string, error)
}

// Embedder is implemented by backends that also serve embeddings
// (ollama, openai, gemini, custom); embedding.FromLLM adapts it to
// embedding.Provider.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Config configures an LLM provider.
type Config struct {
	Provider string `yaml:"provider"` // ollama, lmstudio, openrouter, openai, groq, xai, gemini, custom
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
}

// NewProvider creates an LLM provider from configuration.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg), nil
	case "lmstudio":
		return NewLMStudio(cfg), nil
	case "openrouter":
		return NewOpenRouter(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	case "groq":
		return NewGroq(cfg), nil
	case "xai":
		return NewXAI(cfg), nil
	case "gemini":
		return NewGemini(cfg), nil
	case "custom":
		return NewOpenAICompat(cfg), nil
	case "":
		return nil, fmt.Errorf("llm provider not specified")
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
