package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

// questionStartPattern matches a line that begins a question: a bullet,
// dash, number, or inverted question mark.
var questionStartPattern = regexp.MustCompile(`^\s*(?:[-•*¿]|\d+[.)])`)

// sectionHeaderPattern reuses the uppercase/numbered-heading shapes from
// the semantic strategy to recognize a FAQ section header line.
var sectionHeaderPattern = regexp.MustCompile(`(?m)^[A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ\s]{4,}$`)

// splitQA scans text for (section-header, question, answer-block)
// triples. Returns nil if no question/answer pair was found, so the
// caller can fall back to the semantic strategy.
func (c *Chunker) splitQA(text string) []segment {
	lines := strings.Split(text, "\n")

	var segments []segment
	currentSection := ""
	var question string
	var answer strings.Builder

	flush := func() {
		if question == "" {
			return
		}
		body := strings.TrimSpace(answer.String())
		var sb strings.Builder
		if currentSection != "" {
			fmt.Fprintf(&sb, "[Section: %s]\n", currentSection)
		}
		fmt.Fprintf(&sb, "Pregunta: %s\nRespuesta: %s", question, body)
		segments = append(segments, segment{
			title:    currentSection,
			text:     sb.String(),
			question: question,
		})
		question = ""
		answer.Reset()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		isQuestion := strings.Contains(trimmed, "?") && questionStartPattern.MatchString(trimmed)
		switch {
		case isQuestion:
			flush()
			question = strings.TrimSpace(questionStartPattern.ReplaceAllString(trimmed, ""))
		case sectionHeaderPattern.MatchString(trimmed) && !isQuestion:
			flush()
			currentSection = trimmed
		case question != "":
			if answer.Len() > 0 {
				answer.WriteString(" ")
			}
			answer.WriteString(trimmed)
		}
	}
	flush()

	return segments
}
