package antihallucination

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/fiuba-lse/consulta/embedding"
	"github.com/fiuba-lse/consulta/llm"
)

const faithfulnessThreshold = 0.7
const embeddingSupportThreshold = 0.65

// Checker runs the faithfulness check, preferring an embedding backend,
// then an LLM judge, then falling back to a pure heuristic.
type Checker struct {
	embedder embedding.Provider
	judge    llm.Provider
}

// NewChecker builds a Checker. Either collaborator may be nil.
func NewChecker(embedder embedding.Provider, judge llm.Provider) *Checker {
	return &Checker{embedder: embedder, judge: judge}
}

// CheckFaithfulness scores how well answer is supported by context,
// selecting the highest-available backend.
func (c *Checker) CheckFaithfulness(ctx context.Context, answer, context string) (float64, error) {
	switch {
	case c.embedder != nil:
		return c.embeddingCheck(ctx, answer, context)
	case c.judge != nil:
		return c.llmCheck(ctx, answer, context)
	default:
		return heuristicCheck(answer, context), nil
	}
}

// IsFaithful reports whether score clears the faithfulness threshold.
func IsFaithful(score float64) bool { return score >= faithfulnessThreshold }

func (c *Checker) embeddingCheck(ctx context.Context, answer, context string) (float64, error) {
	claims := SplitClaims(answer)
	sentences := SplitClaims(context)
	if len(claims) == 0 {
		return 0, nil
	}
	if len(sentences) == 0 {
		return heuristicCheck(answer, context), nil
	}

	claimVecs, err := c.embedder.EmbedBatch(ctx, claims)
	if err != nil {
		return 0, fmt.Errorf("antihallucination: embedding claims: %w", err)
	}
	sentenceVecs, err := c.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return 0, fmt.Errorf("antihallucination: embedding context: %w", err)
	}

	supported := 0
	for _, cv := range claimVecs {
		best := 0.0
		for _, sv := range sentenceVecs {
			if sim := cosine(cv, sv); sim > best {
				best = sim
			}
		}
		if best >= embeddingSupportThreshold {
			supported++
		}
	}
	return float64(supported) / float64(len(claims)), nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
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

const judgeSystemPrompt = `You are a faithfulness auditor. Given an answer and its supporting context, ` +
	`decide for each claim in the answer whether the context supports it. ` +
	`Respond with ONLY a JSON object: {"claims":[{"claim":"...","supported":true,"evidence":"..."}],"overall_faithfulness":0.0}`

type judgeResponse struct {
	Claims []struct {
		Claim     string `json:"claim"`
		Supported bool   `json:"supported"`
		Evidence  string `json:"evidence"`
	} `json:"claims"`
	OverallFaithfulness float64 `json:"overall_faithfulness"`
}

func (c *Checker) llmCheck(ctx context.Context, answer, context string) (float64, error) {
	prompt := fmt.Sprintf("Context:\n%s\n\nAnswer:\n%s", context, answer)
	resp, err := c.judge.Generate(ctx, prompt, judgeSystemPrompt)
	if err != nil {
		return 0, fmt.Errorf("antihallucination: judge call: %w", err)
	}
	if strings.HasPrefix(resp, "[Error") {
		return heuristicCheck(answer, context), nil
	}

	var parsed judgeResponse
	if err := json.Unmarshal([]byte(firstJSONObject(resp)), &parsed); err != nil {
		return heuristicCheck(answer, context), nil
	}
	return clamp01(parsed.OverallFaithfulness), nil
}

// firstJSONObject returns the first balanced {...} span in s, or s
// unchanged if none is found (letting json.Unmarshal report the error).
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return s
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

var (
	deadlineTokenPattern = regexp.MustCompile(`(?i)\d+\s*(bimestres?|meses?|a[nñ]os?|%|por ciento)`)
	articleTokenPattern  = regexp.MustCompile(`(?i)Art\.?\s*\d+`)
	programCodePattern   = regexp.MustCompile(`\b(CEIA|CESE|CEIoT|MIA|MIAE|MIoT|MCB|TTFA|TTFB|GdP|GTI)\b`)
)

// heuristicCheck finds deadline/program-code/article tokens in the
// answer and scores how many also appear in the context, defaulting to
// 0.7 (a neutral pass) when the answer contains no such tokens.
func heuristicCheck(answer, context string) float64 {
	tokens := dedupTokens(append(append(
		deadlineTokenPattern.FindAllString(answer, -1),
		articleTokenPattern.FindAllString(answer, -1)...),
		programCodePattern.FindAllString(answer, -1)...))

	if len(tokens) == 0 {
		return 0.7
	}

	lowerContext := strings.ToLower(context)
	matched := 0
	for _, t := range tokens {
		if strings.Contains(lowerContext, strings.ToLower(t)) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

func dedupTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
