package llm

import "context"

// openAIProvider implements Provider for the OpenAI API, and also serves
// embeddings (text-embedding-3-small by default).
type openAIProvider struct {
	base openAICompatClient
}

// NewOpenAI creates a provider for OpenAI.
func NewOpenAI(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	return &openAIProvider{base: newOpenAICompatClient(cfg)}
}

func (p *openAIProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return p.base.generate(ctx, prompt, systemPrompt)
}

func (p *openAIProvider) GenerateWithHistory(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	return p.base.generateWithHistory(ctx, messages, systemPrompt)
}

func (p *openAIProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return p.base.embed(ctx, texts)
}
