// Package graph implements the Graph Store (C6): an in-memory entity/
// relation arena with ego-subgraph extraction, shortest-path, textual
// node rendering, community detection, and gob persistence.
package graph

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fiuba-lse/consulta/entity"
	"github.com/fiuba-lse/consulta/relation"
)

// Graph holds entities keyed by ID and their relations, indexed both by
// source and by target for O(1) neighbor lookups in either direction.
type Graph struct {
	entities map[string]entity.Entity
	out      map[string][]relation.Relation
	in       map[string][]relation.Relation
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		entities: make(map[string]entity.Entity),
		out:      make(map[string][]relation.Relation),
		in:       make(map[string][]relation.Relation),
	}
}

// AddEntity inserts or overwrites an entity by ID.
func (g *Graph) AddEntity(e entity.Entity) {
	g.entities[e.ID] = e
}

// AddRelation inserts r, auto-creating unknown placeholder entities for
// either endpoint not already present in the graph.
func (g *Graph) AddRelation(r relation.Relation) {
	if _, ok := g.entities[r.Source]; !ok {
		g.entities[r.Source] = placeholder(r.Source)
	}
	if _, ok := g.entities[r.Target]; !ok {
		g.entities[r.Target] = placeholder(r.Target)
	}
	g.out[r.Source] = append(g.out[r.Source], r)
	g.in[r.Target] = append(g.in[r.Target], r)
}

func placeholder(id string) entity.Entity {
	return entity.Entity{ID: id, Name: id, Kind: entity.KindUnknown}
}

// Entity returns the entity with the given ID, if present.
func (g *Graph) Entity(id string) (entity.Entity, bool) {
	e, ok := g.entities[id]
	return e, ok
}

// Len returns the number of entities in the graph.
func (g *Graph) Len() int { return len(g.entities) }

// AllEntities returns every entity in the graph, in no particular order.
func (g *Graph) AllEntities() []entity.Entity {
	out := make([]entity.Entity, 0, len(g.entities))
	for _, e := range g.entities {
		out = append(out, e)
	}
	return out
}

// RelationsOf returns every relation touching id (outgoing and
// incoming), ignoring direction.
func (g *Graph) RelationsOf(id string) []relation.Relation {
	return g.neighbors(id)
}

// neighbors returns every relation touching id, ignoring direction.
func (g *Graph) neighbors(id string) []relation.Relation {
	all := make([]relation.Relation, 0, len(g.out[id])+len(g.in[id]))
	all = append(all, g.out[id]...)
	all = append(all, g.in[id]...)
	return all
}

func other(r relation.Relation, id string) string {
	if r.Source == id {
		return r.Target
	}
	return r.Source
}

// Subgraph returns the ego-network of node within radius hops,
// direction-agnostic BFS, as a new Graph containing only the reachable
// entities and the relations between them.
func (g *Graph) Subgraph(node string, radius int) *Graph {
	out := New()
	if _, ok := g.entities[node]; !ok {
		return out
	}

	visited := map[string]bool{node: true}
	frontier := []string{node}
	out.AddEntity(g.entities[node])

	for depth := 0; depth < radius && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, r := range g.neighbors(id) {
				nb := other(r, id)
				if !visited[nb] {
					visited[nb] = true
					next = append(next, nb)
					if e, ok := g.entities[nb]; ok {
						out.AddEntity(e)
					}
				}
			}
		}
		frontier = next
	}

	ids := make([]string, 0, len(visited))
	for id := range visited {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, r := range g.out[id] {
			if visited[r.Target] {
				out.AddRelation(r)
			}
		}
	}
	return out
}

// ShortestPath returns the undirected shortest path of entity IDs from
// source to target, or ok=false if they are in different components.
func (g *Graph) ShortestPath(source, target string) (path []string, ok bool) {
	if source == target {
		if _, exists := g.entities[source]; exists {
			return []string{source}, true
		}
		return nil, false
	}
	if _, exists := g.entities[source]; !exists {
		return nil, false
	}
	if _, exists := g.entities[target]; !exists {
		return nil, false
	}

	prev := map[string]string{source: ""}
	queue := []string{source}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			return reconstruct(prev, target), true
		}
		for _, r := range g.neighbors(cur) {
			nb := other(r, cur)
			if _, seen := prev[nb]; seen {
				continue
			}
			prev[nb] = cur
			queue = append(queue, nb)
		}
	}
	return nil, false
}

func reconstruct(prev map[string]string, target string) []string {
	var out []string
	for at := target; at != ""; at = prev[at] {
		out = append([]string{at}, out...)
		if prev[at] == "" {
			break
		}
	}
	return out
}

// RenderNodeContext renders a node's properties followed by its
// outgoing then incoming edges, one line each ("<kind> -> <target>" for
// outgoing, "<kind> <- <source>" for incoming), with an inline hint when
// the relation carries one.
func (g *Graph) RenderNodeContext(id string) string {
	e, ok := g.entities[id]
	if !ok {
		return ""
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s (%s)\n", e.Name, e.Kind)
	keys := make([]string, 0, len(e.Properties))
	for k := range e.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %v\n", k, e.Properties[k])
	}

	for _, r := range g.out[id] {
		target := g.entities[r.Target].Name
		if r.Hint != "" {
			fmt.Fprintf(&b, "%s -> %s (%s)\n", r.Kind, target, r.Hint)
		} else {
			fmt.Fprintf(&b, "%s -> %s\n", r.Kind, target)
		}
	}
	for _, r := range g.in[id] {
		source := g.entities[r.Source].Name
		if r.Hint != "" {
			fmt.Fprintf(&b, "%s <- %s (%s)\n", r.Kind, source, r.Hint)
		} else {
			fmt.Fprintf(&b, "%s <- %s\n", r.Kind, source)
		}
	}
	return b.String()
}

// Stats summarizes graph size and shape.
type Stats struct {
	EntityCount        int            `json:"entity_count"`
	RelationCount      int            `json:"relation_count"`
	KindCounts         map[string]int `json:"kind_counts"`
	RelationKindCounts map[string]int `json:"relation_kind_counts"`
	Density            float64        `json:"density"`
	ComponentCount     int            `json:"component_count"`
}

// Statistics computes entity/relation counts by kind, graph density
// (relations / possible undirected pairs), and connected-component count.
func (g *Graph) Statistics() Stats {
	kindCounts := make(map[string]int)
	for _, e := range g.entities {
		kindCounts[string(e.Kind)]++
	}

	relCount := 0
	relKindCounts := make(map[string]int)
	for _, rs := range g.out {
		relCount += len(rs)
		for _, r := range rs {
			relKindCounts[string(r.Kind)]++
		}
	}

	n := len(g.entities)
	density := 0.0
	if n > 1 {
		possible := float64(n*(n-1)) / 2
		density = float64(relCount) / possible
	}

	return Stats{
		EntityCount:        n,
		RelationCount:      relCount,
		KindCounts:         kindCounts,
		RelationKindCounts: relKindCounts,
		Density:            density,
		ComponentCount:     g.componentCount(),
	}
}

func (g *Graph) componentCount() int {
	visited := make(map[string]bool, len(g.entities))
	count := 0
	for id := range g.entities {
		if visited[id] {
			continue
		}
		count++
		queue := []string{id}
		visited[id] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, r := range g.neighbors(cur) {
				nb := other(r, cur)
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
	}
	return count
}

// gobGraph is the on-disk representation used by Persist/Load.
type gobGraph struct {
	Entities  map[string]entity.Entity
	Relations []relation.Relation
}

// Persist writes the graph as a gob-encoded binary file.
func (g *Graph) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var relations []relation.Relation
	for _, rs := range g.out {
		relations = append(relations, rs...)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobGraph{Entities: g.entities, Relations: relations}); err != nil {
		return fmt.Errorf("graph: encoding: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "graph.gob"), buf.Bytes(), 0o644)
}

// Load reads a graph previously written by Persist.
func Load(dir string) (*Graph, error) {
	data, err := os.ReadFile(filepath.Join(dir, "graph.gob"))
	if err != nil {
		return nil, fmt.Errorf("graph: reading: %w", err)
	}
	var gg gobGraph
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&gg); err != nil {
		return nil, fmt.Errorf("graph: decoding: %w", err)
	}

	g := New()
	for _, e := range gg.Entities {
		g.AddEntity(e)
	}
	for _, r := range gg.Relations {
		g.AddRelation(r)
	}
	return g, nil
}
