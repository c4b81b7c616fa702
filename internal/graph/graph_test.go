package graph_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/graph"
	"tour-planner-service/internal/testutil"
)

func TestGraph_CostAndArcs(t *testing.T) {
	g := testutil.FiveVertexGraph()

	assert.True(t, g.IsArc("1", "7"))
	assert.False(t, g.IsArc("1", "1"))
	assert.False(t, g.IsArc("1", "3"))
	assert.Equal(t, 8.5, g.Cost("1", "7"))
	assert.True(t, math.IsInf(g.Cost("1", "3"), 1))
}

func TestGraph_MinSubgraphCost(t *testing.T) {
	g := testutil.FiveVertexGraph()

	assert.Equal(t, 1.0, g.MinSubgraphCost([]string{"1", "2", "4", "6", "7"}))
	assert.Equal(t, 3.0, g.MinSubgraphCost([]string{"6", "7"}))
	assert.Equal(t, 2.0, g.MinSubgraphCost([]string{"2", "4", "7"}))
	assert.True(t, math.IsInf(g.MinSubgraphCost([]string{"7"}), 1))
}

func TestGraph_Nearest(t *testing.T) {
	g := testutil.FiveVertexGraph()

	got, ok := g.Nearest("1", []string{"2", "4", "6", "7"})
	assert.True(t, ok)
	assert.Equal(t, "2", got)

	got, ok = g.Nearest("7", []string{"7"})
	assert.False(t, ok)
	assert.Equal(t, "", got)
}

func TestGraph_NearestTieGoesToSmallestID(t *testing.T) {
	g := graph.New()
	g.AddEdge(domain.Path{Origin: "a", Destination: "c", Cost: 2})
	g.AddEdge(domain.Path{Origin: "a", Destination: "b", Cost: 2})

	got, _ := g.Nearest("a", []string{"c", "b"})
	assert.Equal(t, "b", got)
}

func TestGraph_EmptyMinCost(t *testing.T) {
	g := graph.New()
	g.AddVertex("x")
	g.CalculateMinCost()
	assert.Equal(t, 0.0, g.MinCost())
	assert.Equal(t, []string{"x"}, g.Vertices())
}
