package chunker

import (
	"regexp"
	"strings"
)

// semanticPatterns are tried in order; the first to yield more than one
// section wins.
var semanticPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*Art(?:í|i)culo?\s*\.?\s*\d+`),           // article markers
	regexp.MustCompile(`(?m)^[A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ\s]{4,}$`),            // uppercase headers, >=5 chars
	regexp.MustCompile(`(?m)^\s*(?:[IVXLCDM]+|\d+)\.\s*\S`),             // numbered headings (roman or arabic)
}

// splitSemantic tries each pattern in priority order and splits text at
// every matching line, using the matched line as the section title.
func (c *Chunker) splitSemantic(text string) []segment {
	lines := strings.Split(text, "\n")

	for _, pattern := range semanticPatterns {
		sections := splitByPattern(lines, pattern)
		if len(sections) > 1 {
			return sections
		}
	}

	// No pattern produced more than one section: treat the whole text as
	// a single semantic chunk (it may still be split later by
	// enforceBounds if oversize).
	return []segment{{text: strings.TrimSpace(text)}}
}

// splitByPattern breaks lines into segments starting at each line matching
// pattern; content before the first match (if any) is dropped only when
// empty, otherwise kept as an untitled leading segment.
func splitByPattern(lines []string, pattern *regexp.Regexp) []segment {
	var segments []segment
	var title string
	var body strings.Builder
	started := false

	flush := func() {
		text := strings.TrimSpace(body.String())
		if text == "" && title == "" {
			return
		}
		segments = append(segments, segment{title: title, text: text})
		body.Reset()
	}

	for _, line := range lines {
		if pattern.MatchString(strings.TrimSpace(line)) {
			flush()
			title = strings.TrimSpace(line)
			started = true
			continue
		}
		if body.Len() > 0 {
			body.WriteString("\n")
		}
		body.WriteString(line)
	}
	flush()

	if !started {
		return nil
	}
	return segments
}
