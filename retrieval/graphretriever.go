package retrieval

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/fiuba-lse/consulta/entity"
	"github.com/fiuba-lse/consulta/graph"
)

const (
	subgraphRadius      = 2
	fuzzyThreshold      = 0.5
	maxFuzzyGroundings  = 5
	maxGroundedPerQuery = 5
)

// GraphResult is one graph-retrieval hit anchored on a grounded entity:
// Text renders that entity's properties and its direct edges only.
type GraphResult struct {
	NodeID     string
	NodeName   string
	Text       string
	Confidence float64
	Path       string // shortest-path description between the top two grounded nodes, if any
}

// Graph is the subset of graph.Graph the retriever needs.
type Graph struct {
	g *graph.Graph
}

// NewGraph wraps a graph.Graph for retrieval.
func NewGraph(g *graph.Graph) *Graph { return &Graph{g: g} }

// Search grounds query to up to k entities and renders each one's own
// properties and direct edges (RenderNodeContext), describing a shortest
// path between the top two grounded nodes when more than one was found.
// The radius-2 subgraph only sets Confidence (its entity count / 5,
// capped at 1); edges between neighbours are not rendered.
func (r *Graph) Search(query string, k int) []GraphResult {
	if k > maxGroundedPerQuery {
		k = maxGroundedPerQuery
	}
	grounded := r.ground(query)
	if len(grounded) > k {
		grounded = grounded[:k]
	}

	results := make([]GraphResult, 0, len(grounded))
	for _, id := range grounded {
		e, ok := r.g.Entity(id)
		if !ok {
			continue
		}
		sub := r.g.Subgraph(id, subgraphRadius)
		entityCount := sub.Len()
		confidence := float64(entityCount) / 5
		if confidence > 1 {
			confidence = 1
		}
		results = append(results, GraphResult{
			NodeID:     id,
			NodeName:   e.Name,
			Text:       r.g.RenderNodeContext(id),
			Confidence: confidence,
		})
	}

	if len(grounded) >= 2 {
		path, ok := r.g.ShortestPath(grounded[0], grounded[1])
		if ok {
			results = appendPathDescription(results, r.g, path)
		}
	}

	return results
}

func appendPathDescription(results []GraphResult, g *graph.Graph, path []string) []GraphResult {
	if len(results) == 0 {
		return results
	}
	var b strings.Builder
	for i := 0; i < len(path)-1; i++ {
		kind := relationKindBetween(g, path[i], path[i+1])
		a, _ := g.Entity(path[i])
		b2, _ := g.Entity(path[i+1])
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(a.Name)
		b.WriteString(" --[")
		b.WriteString(kind)
		b.WriteString("]--> ")
		b.WriteString(b2.Name)
	}
	results[0].Path = b.String()
	return results
}

func relationKindBetween(g *graph.Graph, a, b string) string {
	for _, r := range g.RelationsOf(a) {
		if r.Target == b || r.Source == b {
			return string(r.Kind)
		}
	}
	return "related_to"
}

// ground resolves query to entity IDs in priority order: program/
// subject code substring match, process keyword match, then fuzzy
// name match over every remaining entity.
func (r *Graph) ground(query string) []string {
	lower := strings.ToLower(query)
	var out []string
	seen := map[string]bool{}

	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	entities := r.g.AllEntities()
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })

	for _, e := range entities {
		if e.Kind != entity.KindProgram && e.Kind != entity.KindSubject {
			continue
		}
		if strings.Contains(lower, strings.ToLower(e.Name)) {
			add(e.ID)
		}
	}

	for _, e := range entities {
		if e.Kind != entity.KindProcess {
			continue
		}
		if strings.Contains(lower, strings.ReplaceAll(e.Name, "_", " ")) {
			add(e.ID)
		}
	}

	if len(out) > 0 {
		return out
	}

	type scored struct {
		id    string
		score float64
	}
	var candidates []scored
	for _, e := range entities {
		score := bestFuzzyRatio(lower, e)
		if score > fuzzyThreshold {
			candidates = append(candidates, scored{id: e.ID, score: score})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > maxFuzzyGroundings {
		candidates = candidates[:maxFuzzyGroundings]
	}
	for _, c := range candidates {
		add(c.id)
	}
	return out
}

// bestFuzzyRatio scores query (already lowercased) against an entity's
// name and every alias, returning the highest ratio found. An exact
// substring containment in either direction floors the ratio at 0.8,
// matching a plain keyword hit even when the sequence-similarity ratio
// alone would score it lower.
func bestFuzzyRatio(query string, e entity.Entity) float64 {
	best := 0.0
	terms := append([]string{e.Name}, e.Aliases...)
	for _, term := range terms {
		term = strings.ToLower(term)
		if term == "" {
			continue
		}
		ratio := fuzzyRatio(query, term)
		if strings.Contains(term, query) || strings.Contains(query, term) {
			ratio = max(ratio, 0.8)
		}
		best = max(best, ratio)
	}
	return best
}

// fuzzyRatio is the Ratcliff/Obershelp similarity ratio between a and b:
// twice the number of matching characters over the combined length of
// both strings.
func fuzzyRatio(a, b string) float64 {
	return difflib.NewMatcher(runeTokens(a), runeTokens(b)).Ratio()
}

func runeTokens(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
