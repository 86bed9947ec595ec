package llm

import "context"

// geminiProvider implements Provider for Google's Gemini API via its
// OpenAI-compatible endpoint (no /v1 path prefix), and also serves
// embeddings (gemini-embedding-001).
type geminiProvider struct {
	base openAICompatClient
}

// NewGemini creates a provider for Google Gemini.
func NewGemini(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	return &geminiProvider{base: newOpenAICompatClientPrefix(cfg, "")}
}

func (p *geminiProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return p.base.generate(ctx, prompt, systemPrompt)
}

func (p *geminiProvider) GenerateWithHistory(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	return p.base.generateWithHistory(ctx, messages, systemPrompt)
}

func (p *geminiProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return p.base.embed(ctx, texts)
}
