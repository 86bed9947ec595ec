// Package antihallucination implements the Anti-Hallucination Engine
// (C10): claim splitting, three-tier faithfulness checking, confidence
// scoring, and abstention/fallback-contact routing.
package antihallucination

import "regexp"

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+(?:\s+|$)`)

const minClaimLen = 10

// SplitClaims segments text into sentence-level claims, dropping spans
// shorter than minClaimLen characters.
func SplitClaims(text string) []string {
	var out []string
	for _, m := range sentencePattern.FindAllString(text, -1) {
		trimmed := trimSpace(m)
		if len(trimmed) < minClaimLen {
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		if trimmed := trimSpace(text); len(trimmed) >= minClaimLen {
			out = append(out, trimmed)
		}
	}
	return out
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
