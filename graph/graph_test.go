package graph

import (
	"testing"

	"github.com/fiuba-lse/consulta/entity"
	"github.com/fiuba-lse/consulta/relation"
)

func build() *Graph {
	g := New()
	mia := entity.Entity{ID: "mia", Name: "MIA", Kind: entity.KindProgram}
	ceia := entity.Entity{ID: "ceia", Name: "CEIA", Kind: entity.KindProgram}
	lse := entity.Entity{ID: "lse", Name: "LSE", Kind: entity.KindInstitution}
	g.AddEntity(mia)
	g.AddEntity(ceia)
	g.AddEntity(lse)
	g.AddRelation(relation.Relation{Source: "mia", Target: "ceia", Kind: relation.KindRequiresGraduationFrom})
	g.AddRelation(relation.Relation{Source: "mia", Target: "lse", Kind: relation.KindBelongsTo})
	return g
}

func TestSubgraphRadiusOne(t *testing.T) {
	g := build()
	sub := g.Subgraph("mia", 1)
	if sub.Len() != 3 {
		t.Fatalf("expected 3 entities within radius 1, got %d", sub.Len())
	}
}

func TestSubgraphMissingNodeIsEmpty(t *testing.T) {
	g := build()
	sub := g.Subgraph("nonexistent", 2)
	if sub.Len() != 0 {
		t.Fatalf("expected empty subgraph, got %d entities", sub.Len())
	}
}

func TestShortestPathFindsDirectEdge(t *testing.T) {
	g := build()
	path, ok := g.ShortestPath("mia", "ceia")
	if !ok {
		t.Fatal("expected a path")
	}
	if len(path) != 2 || path[0] != "mia" || path[1] != "ceia" {
		t.Errorf("unexpected path: %v", path)
	}
}

func TestShortestPathDisconnectedReturnsFalse(t *testing.T) {
	g := build()
	g.AddEntity(entity.Entity{ID: "isolated", Name: "Isolated", Kind: entity.KindUnknown})
	_, ok := g.ShortestPath("mia", "isolated")
	if ok {
		t.Error("expected no path between disconnected nodes")
	}
}

func TestAddRelationAutoCreatesPlaceholder(t *testing.T) {
	g := New()
	g.AddRelation(relation.Relation{Source: "a", Target: "b", Kind: relation.KindAppliesTo})
	if g.Len() != 2 {
		t.Fatalf("expected 2 placeholder entities, got %d", g.Len())
	}
	e, _ := g.Entity("a")
	if e.Kind != entity.KindUnknown {
		t.Errorf("placeholder kind = %s, want unknown", e.Kind)
	}
}

func TestRenderNodeContextListsEdges(t *testing.T) {
	g := build()
	rendered := g.RenderNodeContext("mia")
	if rendered == "" {
		t.Fatal("expected non-empty rendering")
	}
}

func TestStatisticsCountsKindsAndComponents(t *testing.T) {
	g := build()
	stats := g.Statistics()
	if stats.EntityCount != 3 {
		t.Errorf("entity count = %d, want 3", stats.EntityCount)
	}
	if stats.ComponentCount != 1 {
		t.Errorf("component count = %d, want 1", stats.ComponentCount)
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	g := build()
	dir := t.TempDir()
	if err := g.Persist(dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != g.Len() {
		t.Errorf("loaded entity count = %d, want %d", loaded.Len(), g.Len())
	}
}

func TestDetectCommunitiesFindsComponent(t *testing.T) {
	g := build()
	communities := DetectCommunities(g)
	if len(communities) == 0 {
		t.Fatal("expected at least one community")
	}
	if communities[0].Summary == "" {
		t.Error("expected non-empty deterministic summary")
	}
}
