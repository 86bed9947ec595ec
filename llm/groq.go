package llm

import "context"

// groqProvider implements Provider for Groq's OpenAI-compatible inference
// API, used for fast open-source model inference (Llama, Mixtral, Gemma).
type groqProvider struct {
	base openAICompatClient
}

// NewGroq creates a provider for Groq.
func NewGroq(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	return &groqProvider{base: newOpenAICompatClient(cfg)}
}

func (p *groqProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return p.base.generate(ctx, prompt, systemPrompt)
}

func (p *groqProvider) GenerateWithHistory(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	return p.base.generateWithHistory(ctx, messages, systemPrompt)
}
