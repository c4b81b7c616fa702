package tsp

import (
	"encoding/binary"
	"math"
	"time"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/graph"
)

// BranchAndBound is an exact depth-first search over partial tours. It prunes
// with a subset lower bound and never expands a delivery before its pickup.
// The result is reproducible when the search completes within its budget.
type BranchAndBound struct {
	base
}

func NewBranchAndBound() *BranchAndBound {
	return &BranchAndBound{base: newBase()}
}

func (s *BranchAndBound) Search(timeBudget time.Duration, g *graph.Graph, requests *domain.RequestSet) <-chan Result {
	return s.search(timeBudget, g, requests, runBranchAndBound)
}

// bnbSearch is the per-search context. The bound memo lives here rather
// than on the graph.
type bnbSearch struct {
	*searchState
	index   map[string]int
	memo    map[string]float64
	visited map[string]bool
	path    []string
}

func runBranchAndBound(st *searchState) error {
	greedy := greedyOrder(st.g, st.points)

	s := &bnbSearch{
		searchState: st,
		index:       make(map[string]int, len(greedy)),
		memo:        make(map[string]float64),
		visited:     map[string]bool{st.depot: true},
		path:        make([]string, 1, len(greedy)),
	}
	for i, id := range greedy {
		s.index[id] = i
	}
	s.path[0] = st.depot

	s.branch(st.depot, greedy[1:], 0)
	return nil
}

// greedyOrder is the nearest-neighbour permutation from the depot. It only
// decides in which order branches are explored.
func greedyOrder(g *graph.Graph, points []string) []string {
	order := []string{points[0]}
	remaining := append([]string(nil), points[1:]...)

	current := points[0]
	for len(remaining) > 0 {
		next, ok := g.Nearest(current, remaining)
		if !ok {
			// no arc out of current: keep the rest in vertex order
			return append(order, remaining...)
		}
		order = append(order, next)
		for i, id := range remaining {
			if id == next {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
		current = next
	}
	return order
}

// branch explores the subtree rooted at current. unvisited keeps greedy order;
// candidates are taken from its tail.
func (s *bnbSearch) branch(current string, unvisited []string, cost float64) {
	if s.expired() {
		return
	}

	if len(unvisited) == 0 {
		if s.g.IsArc(current, s.depot) {
			s.offer(s.path, cost+s.g.Cost(current, s.depot))
		}
		return
	}

	if cost+s.bound(current, unvisited) >= s.bestCost {
		return
	}

	for i := len(unvisited) - 1; i >= 0; i-- {
		next := unvisited[i]
		if !released(s.precedence, next, s.visited) {
			continue
		}
		if !s.g.IsArc(current, next) {
			continue
		}

		rest := make([]string, 0, len(unvisited)-1)
		rest = append(rest, unvisited[:i]...)
		rest = append(rest, unvisited[i+1:]...)

		s.visited[next] = true
		s.path = append(s.path, next)
		s.branch(next, rest, cost+s.g.Cost(current, next))
		s.path = s.path[:len(s.path)-1]
		delete(s.visited, next)
	}
}

// bound is (|unvisited|+1) times the cheapest edge induced by
// unvisited ∪ {current, depot}: the tour still needs that many edges.
func (s *bnbSearch) bound(current string, unvisited []string) float64 {
	ids := make([]string, 0, len(unvisited)+2)
	ids = append(ids, unvisited...)
	ids = append(ids, current)
	if current != s.depot {
		ids = append(ids, s.depot)
	}

	key := s.subsetKey(ids)
	min, ok := s.memo[key]
	if !ok {
		min = s.g.MinSubgraphCost(ids)
		s.memo[key] = min
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return float64(len(unvisited)+1) * min
}

// subsetKey encodes ids as a bitset over the greedy index.
func (s *bnbSearch) subsetKey(ids []string) string {
	words := make([]uint64, (len(s.index)+63)/64)
	for _, id := range ids {
		i := s.index[id]
		words[i/64] |= 1 << (i % 64)
	}

	buf := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[8*i:], w)
	}
	return string(buf)
}
