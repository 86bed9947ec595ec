package chunker

import "strings"

// splitFixed implements the fixed strategy: a sentence-aware sliding
// window over estimated token counts with overlap, breaking on sentence
// boundaries; a single sentence longer than MaxTokens is cut at word
// boundaries instead. title is carried onto every resulting segment
// (used when enforceBounds falls back to the fixed policy for an oversize
// semantic section).
func (c *Chunker) splitFixed(title, text string) []segment {
	if estimateTokens(text) <= c.cfg.MaxTokens {
		return []segment{{title: title, text: strings.TrimSpace(text)}}
	}

	var segments []segment
	for _, para := range splitParagraphs(text) {
		segments = append(segments, c.windowParagraph(title, para)...)
	}
	if len(segments) == 0 {
		segments = c.windowParagraph(title, text)
	}
	return coalesceWindow(title, segments, c.cfg.MaxTokens, c.cfg.Overlap)
}

// windowParagraph splits one paragraph into sentences; coalesceWindow does
// the actual sliding-window packing across all of a section's sentences so
// overlap can cross paragraph boundaries. A sentence over MaxTokens is
// cut into runs of words that each fit within MaxTokens.
func (c *Chunker) windowParagraph(title, para string) []segment {
	var out []segment
	maxWords := max(1, int(float64(c.cfg.MaxTokens)/1.3))
	for _, s := range splitSentences(para) {
		if estimateTokens(s) <= c.cfg.MaxTokens {
			out = append(out, segment{title: title, text: s})
			continue
		}
		words := strings.Fields(s)
		for i := 0; i < len(words); i += maxWords {
			out = append(out, segment{title: title, text: strings.Join(words[i:min(i+maxWords, len(words))], " ")})
		}
	}
	return out
}

// coalesceWindow packs consecutive sentence segments into windows of at
// most maxTokens, carrying an overlap-worth of trailing text from the
// previous window into the next.
func coalesceWindow(title string, sentences []segment, maxTokens, overlap int) []segment {
	var windows []segment
	var cur strings.Builder
	curTokens := 0
	var overlapText string

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		text := strings.TrimSpace(cur.String())
		windows = append(windows, segment{title: title, text: text})
		overlapText = extractOverlap(text, overlap)
		cur.Reset()
		curTokens = 0
	}

	for _, s := range sentences {
		sTokens := estimateTokens(s.text)
		if curTokens+sTokens > maxTokens && cur.Len() > 0 {
			flush()
			if overlapText != "" && estimateTokens(overlapText)+sTokens <= maxTokens {
				cur.WriteString(overlapText)
				cur.WriteString(" ")
				curTokens = estimateTokens(overlapText)
			}
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(s.text)
		curTokens += sTokens
	}
	flush()

	if len(windows) == 0 {
		return nil
	}
	return windows
}
