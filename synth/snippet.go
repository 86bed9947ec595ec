package synth

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// snippetMaxLen is the approximate maximum character length for a snippet.
const snippetMaxLen = 300

// ExtractSnippet returns the 1-2 most relevant sentences from content
// based on word overlap with answerWords. Returns empty string if no
// good match is found.
func ExtractSnippet(content string, answerWords map[string]bool) string {
	if len(answerWords) == 0 || content == "" {
		return ""
	}

	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return ""
	}

	type scored struct {
		text  string
		score int
	}
	scoredSentences := make([]scored, len(sentences))
	for i, s := range sentences {
		words := significantWords(s)
		overlap := 0
		for w := range words {
			if answerWords[w] {
				overlap++
			}
		}
		scoredSentences[i] = scored{text: s, score: overlap}
	}

	bestIdx := 0
	bestScore := scoredSentences[0].score
	for i, s := range scoredSentences {
		if s.score > bestScore {
			bestScore = s.score
			bestIdx = i
		}
	}
	if bestScore == 0 {
		return ""
	}

	result := scoredSentences[bestIdx].text

	if len(result) < snippetMaxLen && len(scoredSentences) > 1 {
		candidateIdx := -1
		candidateScore := 0
		for _, delta := range []int{1, -1} {
			adj := bestIdx + delta
			if adj >= 0 && adj < len(scoredSentences) && scoredSentences[adj].score > candidateScore {
				candidateScore = scoredSentences[adj].score
				candidateIdx = adj
			}
		}
		if candidateIdx >= 0 && candidateScore > 0 {
			combined := result + " " + scoredSentences[candidateIdx].text
			if candidateIdx < bestIdx {
				combined = scoredSentences[candidateIdx].text + " " + result
			}
			if len(combined) <= snippetMaxLen {
				result = combined
			}
		}
	}

	return result
}

// SignificantWords returns the set of lowercased words >= 4 characters,
// excluding common Spanish stop words. Exported so callers can derive
// the word set once from a synthesized answer and reuse it across every
// source's ExtractSnippet call.
func SignificantWords(text string) map[string]bool {
	return significantWords(text)
}

// significantWords returns the set of lowercased words >= 4 characters,
// excluding common Spanish stop words.
func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if utf8.RuneCountInString(w) >= 4 && !stopWords[w] {
			words[w] = true
		}
	}
	return words
}

// splitSentences splits text into sentences at period/question/
// exclamation boundaries followed by whitespace or end of string.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				s := strings.TrimSpace(cur.String())
				if s != "" {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
	}
	if cur.Len() > 0 {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// stopWords is a set of common Spanish stop words to exclude from
// significant-word matching.
var stopWords = map[string]bool{
	"este": true, "esta": true, "estos": true, "estas": true,
	"para": true, "como": true, "pero": true, "desde": true,
	"hasta": true, "sobre": true, "entre": true, "cuando": true,
	"donde": true, "quien": true, "cual": true, "cuales": true,
	"todo": true, "toda": true, "todos": true, "todas": true,
	"debe": true, "deben": true, "puede": true, "pueden": true,
	"tambien": true, "solo": true, "mismo": true, "misma": true,
	"otro": true, "otra": true, "otros": true, "otras": true,
	"muy": true, "mas": true, "ser": true,
}
