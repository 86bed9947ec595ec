// Package chunker segments cleaned document text into bounded-size
// retrieval units (C1), dispatching on document class per the fixed,
// semantic, and qa-pair strategies.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// DocumentType is the closed set of administrative document classes.
type DocumentType string

const (
	DocResolution DocumentType = "resolution"
	DocFAQ        DocumentType = "faq"
	DocRegulation DocumentType = "regulation"
	DocProgram    DocumentType = "program"
	DocOther      DocumentType = "other"
)

// Strategy is the closed set of chunking strategies.
type Strategy string

const (
	StrategyFixed    Strategy = "fixed"
	StrategySemantic Strategy = "semantic"
	StrategyQA       Strategy = "qa"
)

// Metadata holds the C2 tagger's output. It is attached post-chunking by
// the metadata package; the chunker only populates Question for qa-pair
// chunks.
type Metadata struct {
	Topics            []string `json:"topics,omitempty"`
	ProgramCodes      []string `json:"program_codes,omitempty"`
	MentionedPrograms []string `json:"mentioned_programs,omitempty"`
	ContactEmails     []string `json:"contact_emails,omitempty"`
	Question          string   `json:"question,omitempty"`
}

// Chunk is the atomic retrieval unit described by the data model: an
// immutable, bounded-size text with provenance and metadata.
type Chunk struct {
	ChunkID      string       `json:"chunk_id"`
	Text         string       `json:"text"`
	DocumentName string       `json:"document_name"`
	DocumentType DocumentType `json:"document_type"`
	SectionTitle string       `json:"section_title"`
	ChunkIndex   int          `json:"chunk_index"`
	Strategy     Strategy     `json:"strategy"`
	TokenCount   int          `json:"token_count"`
	PageNumbers  []int        `json:"page_numbers,omitempty"`
	Metadata     Metadata     `json:"metadata"`
}

// Config controls chunking bounds.
type Config struct {
	MinTokens int
	MaxTokens int
	Overlap   int
}

// Chunker converts cleaned document text into bounded chunks.
type Chunker struct {
	cfg Config
}

// New returns a Chunker with defaults for zero-value fields.
func New(cfg Config) *Chunker {
	if cfg.MinTokens == 0 {
		cfg.MinTokens = 100
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Overlap == 0 {
		cfg.Overlap = 64
	}
	return &Chunker{cfg: cfg}
}

// segment is an intermediate (title, text) pair produced by a strategy,
// before token-bound enforcement and final Chunk assembly.
type segment struct {
	title    string
	text     string
	question string // set only for qa-pair segments
}

// Chunk selects a strategy from docType and emits bounded chunks for text.
// Every emitted chunk satisfies MinTokens <= TokenCount <= MaxTokens,
// except when a single atomic segment (e.g. a short qa-pair answer) is
// itself under MinTokens — token bounds are enforced by splitting, never
// by dropping content.
func (c *Chunker) Chunk(documentName string, docType DocumentType, text string) []Chunk {
	strategy, segments := c.split(docType, text)

	var bounded []segment
	for _, s := range segments {
		bounded = append(bounded, c.enforceBounds(s)...)
	}
	bounded = mergeUndersized(bounded, c.cfg.MinTokens)

	chunks := make([]Chunk, 0, len(bounded))
	for i, s := range bounded {
		chunks = append(chunks, Chunk{
			ChunkID:      chunkID(documentName, i),
			Text:         s.text,
			DocumentName: documentName,
			DocumentType: docType,
			SectionTitle: s.title,
			ChunkIndex:   i,
			Strategy:     strategy,
			TokenCount:   estimateTokens(s.text),
			Metadata:     Metadata{Question: s.question},
		})
	}
	return chunks
}

// split dispatches to the strategy selected by document class:
// faq -> qa-pair, regulation|resolution|program -> semantic, else fixed.
func (c *Chunker) split(docType DocumentType, text string) (Strategy, []segment) {
	switch docType {
	case DocFAQ:
		if segs := c.splitQA(text); len(segs) > 0 {
			return StrategyQA, segs
		}
		return StrategySemantic, c.splitSemantic(text)
	case DocRegulation, DocResolution, DocProgram:
		return StrategySemantic, c.splitSemantic(text)
	default:
		return StrategyFixed, c.splitFixed("", text)
	}
}

// enforceBounds splits a segment whose estimated token count exceeds
// MaxTokens using the fixed-size policy, carrying the parent title as a
// prefix on each resulting fragment's title.
func (c *Chunker) enforceBounds(s segment) []segment {
	if estimateTokens(s.text) <= c.cfg.MaxTokens {
		return []segment{s}
	}
	if s.question != "" {
		// qa-pair answers are not further split: the question/answer
		// shape is the unit of retrieval.
		return []segment{s}
	}
	return c.splitFixed(s.title, s.text)
}

// mergeUndersized folds any segment under minTokens into its neighbour so
// every emitted chunk meets the lower bound, except when it is the only
// segment produced.
func mergeUndersized(segs []segment, minTokens int) []segment {
	if len(segs) <= 1 {
		return segs
	}
	out := make([]segment, 0, len(segs))
	for _, s := range segs {
		if len(out) > 0 && (estimateTokens(s.text) < minTokens || estimateTokens(out[len(out)-1].text) < minTokens) {
			prev := &out[len(out)-1]
			prev.text = strings.TrimSpace(prev.text + "\n\n" + s.text)
			continue
		}
		out = append(out, s)
	}
	// A final undersized fragment couldn't merge forward; fold it back.
	if len(out) > 1 && estimateTokens(out[len(out)-1].text) < minTokens {
		last := out[len(out)-1]
		out = out[:len(out)-1]
		prev := &out[len(out)-1]
		prev.text = strings.TrimSpace(prev.text + "\n\n" + last.text)
	}
	return out
}

// ---------------------------------------------------------------------
// shared helpers
// ---------------------------------------------------------------------

// estimateTokens approximates token count as words * 1.3.
func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) * 1.3))
}

// chunkID derives a stable, corpus-unique id from the document name and
// the chunk's position within it.
func chunkID(documentName string, index int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d", documentName, index)))
	return hex.EncodeToString(h[:])[:16]
}

// abbreviations are protected before sentence splitting and restored
// after, so a trailing period doesn't register as a sentence boundary.
var abbreviations = []string{
	"Art.", "Arts.", "Dr.", "Dra.", "Sr.", "Sra.", "Prof.", "Ing.", "Lic.",
	"Inc.", "etc.", "núm.", "pág.", "cap.", "Nro.",
}

const abbrevPlaceholder = "\x00"

func protectAbbreviations(text string) string {
	for _, a := range abbreviations {
		protected := strings.TrimSuffix(a, ".") + abbrevPlaceholder
		text = strings.ReplaceAll(text, a, protected)
	}
	return text
}

func restoreAbbreviations(text string) string {
	return strings.ReplaceAll(text, abbrevPlaceholder, ".")
}

// splitSentences is a sentence tokenizer that protects known abbreviations
// and splits only on sentence-terminal punctuation followed by
// whitespace or end of string.
func splitSentences(text string) []string {
	protected := protectAbbreviations(text)

	var sentences []string
	var cur strings.Builder
	runes := []rune(protected)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				if s := strings.TrimSpace(restoreAbbreviations(cur.String())); s != "" {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
	}
	if s := strings.TrimSpace(restoreAbbreviations(cur.String())); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func splitParagraphs(text string) []string {
	raw := regexp.MustCompile(`\n\s*\n`).Split(text, -1)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractOverlap returns the trailing words of text whose estimated token
// count is at most maxTokens.
func extractOverlap(text string, maxTokens int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	maxWords := int(float64(maxTokens) / 1.3)
	if maxWords > len(words) {
		maxWords = len(words)
	}
	if maxWords <= 0 {
		return ""
	}
	return strings.Join(words[len(words)-maxWords:], " ")
}
