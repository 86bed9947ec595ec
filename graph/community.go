package graph

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// minComponentSplit is the minimum component size eligible for further
// modularity-based splitting.
const minComponentSplit = 6

// maxModularityNodes caps the node count for the modularity optimisation.
// Components larger than this are kept as level-0 only.
const maxModularityNodes = 200

// edge represents an unweighted edge in the in-memory adjacency list.
// Relations carry no numeric weight, so every edge counts 1.
type edge struct{ to int }

// Community is a detected group of entities with a deterministic
// textual summary.
type Community struct {
	Level     int      `json:"level"`
	EntityIDs []string `json:"entity_ids"`
	Summary   string   `json:"summary"`
}

// DetectCommunities finds connected components (level 0), further
// splitting any component of at least minComponentSplit and at most
// maxModularityNodes nodes with greedy modularity optimisation (level 1),
// and renders a deterministic
// summary for each.
func DetectCommunities(g *Graph) []Community {
	if g.Len() == 0 {
		return nil
	}

	ids := make([]string, 0, len(g.entities))
	for id := range g.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	idIndex := make(map[string]int, len(ids))
	for i, id := range ids {
		idIndex[id] = i
	}

	adj := make([][]edge, len(ids))
	edgeCount := 0
	seenPair := make(map[string]bool)
	for _, rs := range g.out {
		for _, r := range rs {
			si, okS := idIndex[r.Source]
			ti, okT := idIndex[r.Target]
			if !okS || !okT {
				continue
			}
			key := r.Source + "\x00" + r.Target + "\x00" + string(r.Kind)
			if seenPair[key] {
				continue
			}
			seenPair[key] = true
			adj[si] = append(adj[si], edge{to: ti})
			adj[ti] = append(adj[ti], edge{to: si})
			edgeCount++
		}
	}

	visited := make([]bool, len(ids))
	var components [][]int
	for i := range ids {
		if visited[i] {
			continue
		}
		var comp []int
		queue := []int{i}
		visited[i] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			comp = append(comp, node)
			for _, e := range adj[node] {
				if !visited[e.to] {
					visited[e.to] = true
					queue = append(queue, e.to)
				}
			}
		}
		components = append(components, comp)
	}

	slog.Info("graph: community detection", "entities", len(ids), "relations", edgeCount, "components", len(components))

	totalWeight := float64(edgeCount)
	var communities []Community
	for _, comp := range components {
		communities = append(communities, Community{Level: 0, EntityIDs: componentIDs(comp, ids)})

		if len(comp) >= minComponentSplit && len(comp) <= maxModularityNodes && totalWeight > 0 {
			for _, sub := range modularitySplit(comp, adj, totalWeight) {
				communities = append(communities, Community{Level: 1, EntityIDs: componentIDs(sub, ids)})
			}
		}
	}

	for i := range communities {
		communities[i].Summary = g.summarize(communities[i])
	}
	return communities
}

func componentIDs(comp []int, ids []string) []string {
	out := make([]string, len(comp))
	for i, idx := range comp {
		out[i] = ids[idx]
	}
	return out
}

// modularitySplit applies a greedy modularity optimisation (simplified
// Louvain) to split a connected component into two or more
// sub-communities. If every node ends up in the same group the
// original component is returned as-is.
func modularitySplit(comp []int, adj [][]edge, totalWeight float64) [][]int {
	n := len(comp)
	if n < minComponentSplit {
		return [][]int{comp}
	}

	localIdx := make(map[int]int, n)
	for i, node := range comp {
		localIdx[node] = i
	}

	community := make([]int, n)
	for i := range community {
		community[i] = i
	}

	strength := make([]float64, n)
	for i, node := range comp {
		for _, e := range adj[node] {
			if _, ok := localIdx[e.to]; ok {
				strength[i]++
			}
		}
	}

	m2 := 2.0 * totalWeight
	if m2 == 0 {
		return [][]int{comp}
	}

	commStrength := make(map[int]float64, n)
	for i := range comp {
		commStrength[community[i]] += strength[i]
	}

	maxPasses := 20
	for pass := 0; pass < maxPasses; pass++ {
		moved := false
		for i, node := range comp {
			commWeights := make(map[int]float64)
			for _, e := range adj[node] {
				li, ok := localIdx[e.to]
				if !ok {
					continue
				}
				commWeights[community[li]]++
			}

			currentComm := community[i]
			kiIn := commWeights[currentComm]
			ki := strength[i]
			sigmaCurrent := commStrength[currentComm]
			removeDelta := kiIn/m2 - (sigmaCurrent*ki)/(m2*m2)

			bestComm := currentComm
			bestGain := 0.0
			for c, wic := range commWeights {
				if c == currentComm {
					continue
				}
				sigmaC := commStrength[c]
				gain := (wic/m2 - (sigmaC*ki)/(m2*m2)) - removeDelta
				if gain > bestGain {
					bestGain = gain
					bestComm = c
				}
			}

			if bestComm != currentComm {
				commStrength[currentComm] -= ki
				commStrength[bestComm] += ki
				community[i] = bestComm
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	groups := make(map[int][]int)
	for i, node := range comp {
		groups[community[i]] = append(groups[community[i]], node)
	}

	result := make([][]int, 0, len(groups))
	for _, g := range groups {
		result = append(result, g)
	}
	if len(result) <= 1 {
		return [][]int{comp}
	}
	return result
}

// summarize renders a deterministic textual summary of a community:
// its members grouped by kind, followed by a truncated list of the
// relations that stay within the community.
func (g *Graph) summarize(c Community) string {
	members := make(map[string]bool, len(c.EntityIDs))
	for _, id := range c.EntityIDs {
		members[id] = true
	}

	byKind := make(map[string][]string)
	for _, id := range c.EntityIDs {
		e, ok := g.entities[id]
		if !ok {
			continue
		}
		byKind[string(e.Kind)] = append(byKind[string(e.Kind)], e.Name)
	}

	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	var b strings.Builder
	for _, k := range kinds {
		names := byKind[k]
		sort.Strings(names)
		fmt.Fprintf(&b, "%s: %s\n", k, strings.Join(names, ", "))
	}

	const maxEdgesShown = 10
	shown := 0
	for _, id := range c.EntityIDs {
		for _, r := range g.out[id] {
			if !members[r.Target] {
				continue
			}
			if shown >= maxEdgesShown {
				b.WriteString("...\n")
				return b.String()
			}
			fmt.Fprintf(&b, "%s %s %s\n", g.entities[r.Source].Name, r.Kind, g.entities[r.Target].Name)
			shown++
		}
	}
	return b.String()
}
