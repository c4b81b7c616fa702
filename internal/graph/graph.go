// Package graph holds the complete graph over points of interest and the
// shortest-path reduction that builds it from a road network.
package graph

import (
	"math"
	"slices"
	"strings"

	"tour-planner-service/internal/domain"
)

// Key identifies a directed edge of the graph.
type Key struct {
	Origin      string
	Destination string
}

// Graph is a directed graph over points of interest. Edge costs are the
// cumulative lengths of the realized road paths they carry.
//
// A Graph is written while it is built and read-only afterwards; solvers keep
// their own per-search caches, so one Graph may be shared by several solvers.
type Graph struct {
	vertices map[string]struct{}
	edges    map[Key]domain.Path
	minCost  float64
}

func New() *Graph {
	return &Graph{
		vertices: make(map[string]struct{}),
		edges:    make(map[Key]domain.Path),
	}
}

func (g *Graph) AddVertex(id string) {
	g.vertices[id] = struct{}{}
}

// AddEdge inserts (or replaces) the edge origin->destination, adding both endpoints.
func (g *Graph) AddEdge(p domain.Path) {
	g.vertices[p.Origin] = struct{}{}
	g.vertices[p.Destination] = struct{}{}
	g.edges[Key{Origin: p.Origin, Destination: p.Destination}] = p
}

func (g *Graph) HasVertex(id string) bool {
	_, ok := g.vertices[id]
	return ok
}

// Vertices returns the vertex ids in ascending order.
func (g *Graph) Vertices() []string {
	out := make([]string, 0, len(g.vertices))
	for v := range g.vertices {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (g *Graph) NumVertices() int { return len(g.vertices) }

func (g *Graph) NumEdges() int { return len(g.edges) }

func (g *Graph) Edge(origin, destination string) (domain.Path, bool) {
	p, ok := g.edges[Key{Origin: origin, Destination: destination}]
	return p, ok
}

func (g *Graph) IsArc(origin, destination string) bool {
	_, ok := g.edges[Key{Origin: origin, Destination: destination}]
	return ok
}

// Cost returns the edge cost, or +Inf when there is no such edge.
func (g *Graph) Cost(origin, destination string) float64 {
	p, ok := g.edges[Key{Origin: origin, Destination: destination}]
	if !ok {
		return math.Inf(1)
	}
	return p.Cost
}

// CalculateMinCost caches the smallest edge cost of the whole graph.
func (g *Graph) CalculateMinCost() {
	if len(g.edges) == 0 {
		g.minCost = 0
		return
	}

	g.minCost = math.Inf(1)
	for _, p := range g.edges {
		g.minCost = math.Min(g.minCost, p.Cost)
	}
}

// MinCost returns the value cached by CalculateMinCost.
func (g *Graph) MinCost() float64 { return g.minCost }

// MinSubgraphCost returns the smallest cost among edges whose both endpoints
// belong to ids (+Inf if the induced subgraph has no edge).
func (g *Graph) MinSubgraphCost(ids []string) float64 {
	min := math.Inf(1)
	for _, a := range ids {
		for _, b := range ids {
			if a == b {
				continue
			}
			if p, ok := g.edges[Key{Origin: a, Destination: b}]; ok && p.Cost < min {
				min = p.Cost
			}
		}
	}
	return min
}

// Nearest returns the candidate reachable from `from` at the lowest cost.
// Ties go to the smallest id.
func (g *Graph) Nearest(from string, candidates []string) (string, bool) {
	best := ""
	bestCost := math.Inf(1)
	for _, c := range candidates {
		if c == from {
			continue
		}
		p, ok := g.edges[Key{Origin: from, Destination: c}]
		if !ok {
			continue
		}
		if p.Cost < bestCost || (p.Cost == bestCost && strings.Compare(c, best) < 0) {
			best = c
			bestCost = p.Cost
		}
	}
	return best, best != ""
}
