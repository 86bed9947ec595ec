// Package entity implements the Entity Extractor (C4): pure rule-based,
// typed-entity extraction from cleaned document text. No LLM calls.
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Kind is the closed set of entity kinds.
type Kind string

const (
	KindProgram     Kind = "program"
	KindSubject     Kind = "subject"
	KindTitle       Kind = "title"
	KindRequirement Kind = "requirement"
	KindDeadline    Kind = "deadline"
	KindArticle     Kind = "article"
	KindContact     Kind = "contact"
	KindInstitution Kind = "institution"
	KindResolution  Kind = "resolution"
	KindModality    Kind = "modality"
	KindProcess     Kind = "process"
	KindUnknown     Kind = "unknown"
)

// Entity is a typed node in the knowledge graph's input set.
type Entity struct {
	ID             string         `json:"entity_id"`
	Name           string         `json:"name"`
	Kind           Kind           `json:"kind"`
	Aliases        []string       `json:"aliases,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
	SourceDocument string         `json:"source_document,omitempty"`
}

// ID derives the stable entity_id from kind and canonical (lowercased,
// trimmed) name.
func ID(kind Kind, name string) string {
	canonical := strings.ToLower(strings.TrimSpace(name))
	h := sha256.Sum256([]byte(string(kind) + "\x00" + canonical))
	return hex.EncodeToString(h[:])[:16]
}

// newEntity builds an Entity with its ID derived from kind+name.
func newEntity(kind Kind, name, sourceDocument string, props map[string]any) Entity {
	return newEntityWithAliases(kind, name, sourceDocument, props, nil)
}

// newEntityWithAliases builds an Entity whose Aliases are lowercased for
// matching, as required of every alias the extractor ever records.
func newEntityWithAliases(kind Kind, name, sourceDocument string, props map[string]any, aliases []string) Entity {
	var lowered []string
	if len(aliases) > 0 {
		lowered = make([]string, len(aliases))
		for i, a := range aliases {
			lowered[i] = strings.ToLower(a)
		}
	}
	return Entity{
		ID:             ID(kind, name),
		Name:           name,
		Kind:           kind,
		Aliases:        lowered,
		Properties:     props,
		SourceDocument: sourceDocument,
	}
}

// Dedup removes duplicate entities by ID, keeping the first occurrence
// (stable order of first emission).
func Dedup(entities []Entity) []Entity {
	seen := make(map[string]bool, len(entities))
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}
