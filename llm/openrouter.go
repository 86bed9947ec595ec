package llm

import "context"

// openRouterProvider implements Provider for OpenRouter, which uses the
// OpenAI-compatible API format and proxies a wide range of models.
type openRouterProvider struct {
	base openAICompatClient
}

// NewOpenRouter creates a provider for OpenRouter.
func NewOpenRouter(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api"
	}
	return &openRouterProvider{base: newOpenAICompatClient(cfg)}
}

func (p *openRouterProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return p.base.generate(ctx, prompt, systemPrompt)
}

func (p *openRouterProvider) GenerateWithHistory(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	return p.base.generateWithHistory(ctx, messages, systemPrompt)
}
