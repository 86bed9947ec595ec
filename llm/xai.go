package llm

import "context"

// xaiProvider implements Provider for xAI (Grok), which uses the
// OpenAI-compatible API format.
type xaiProvider struct {
	base openAICompatClient
}

// NewXAI creates a provider for xAI (Grok).
func NewXAI(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.x.ai"
	}
	return &xaiProvider{base: newOpenAICompatClient(cfg)}
}

func (p *xaiProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return p.base.generate(ctx, prompt, systemPrompt)
}

func (p *xaiProvider) GenerateWithHistory(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	return p.base.generateWithHistory(ctx, messages, systemPrompt)
}
