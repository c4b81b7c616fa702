// Package tsp searches the visiting order of a pickup-and-delivery tour over a
// complete graph of points of interest.
package tsp

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/graph"
)

const (
	AlgorithmBranchAndBound     = "branch-and-bound"
	AlgorithmSimulatedAnnealing = "simulated-annealing"
)

var (
	ErrSolverBusy           = errors.New("solver already searching")
	ErrInfeasibleRequestSet = errors.New("infeasible request set")
	ErrNoSolution           = errors.New("no solution found within time budget")
	ErrUnknownAlgorithm     = errors.New("unknown algorithm")
)

// Result is delivered once per Search.
type Result struct {
	Tour    *domain.Tour
	Cost    float64
	Elapsed time.Duration
	Err     error
}

// Contract for an anytime tour search.
//
// Search runs on its own goroutine and delivers exactly one Result before
// closing the channel. A non-positive budget yields a closed channel and leaves
// the solver state untouched.
type Solver interface {
	Search(timeBudget time.Duration, g *graph.Graph, requests *domain.RequestSet) <-chan Result
	Solution() []string
	SolutionCost() float64
	Tour() (*domain.Tour, error)
}

// New returns the solver registered under algorithm. An empty name selects
// branch-and-bound.
func New(algorithm string, opts AnnealingOptions) (Solver, error) {
	switch algorithm {
	case "", AlgorithmBranchAndBound:
		return NewBranchAndBound(), nil
	case AlgorithmSimulatedAnnealing:
		return NewSimulatedAnnealing(opts), nil
	default:
		return nil, fmt.Errorf("new solver: %q: %w", algorithm, ErrUnknownAlgorithm)
	}
}

// problem is the immutable input of one search.
type problem struct {
	g          *graph.Graph
	depot      string
	points     []string
	precedence map[string][]string
}

// newProblem orders the graph vertices with the depot first and checks that
// every request can be honoured on g.
func newProblem(g *graph.Graph, rs *domain.RequestSet) (*problem, error) {
	if g == nil || rs == nil {
		return nil, fmt.Errorf("tsp: graph and request set must be non-nil: %w", ErrInfeasibleRequestSet)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("tsp: %w: %w", ErrInfeasibleRequestSet, err)
	}
	for _, id := range rs.PointsOfInterest() {
		if !g.HasVertex(id) {
			return nil, fmt.Errorf("tsp: point %q missing from graph: %w", id, ErrInfeasibleRequestSet)
		}
	}

	points := []string{rs.DepotID}
	for _, v := range g.Vertices() {
		if v != rs.DepotID {
			points = append(points, v)
		}
	}
	precedence := rs.Precedence()
	if !orderable(points, precedence) {
		return nil, fmt.Errorf("tsp: pickups and deliveries form a cycle: %w", ErrInfeasibleRequestSet)
	}
	return &problem{g: g, depot: rs.DepotID, points: points, precedence: precedence}, nil
}

// released reports whether every pickup required before id is done.
func released(precedence map[string][]string, id string, done map[string]bool) bool {
	for _, pickup := range precedence[id] {
		if !done[pickup] {
			return false
		}
	}
	return true
}

// orderable reports whether some order of points (depot first) respects
// precedence, by releasing points until none is left or none can be released.
func orderable(points []string, precedence map[string][]string) bool {
	done := map[string]bool{points[0]: true}
	pending := slices.Clone(points[1:])
	for len(pending) > 0 {
		n := len(pending)
		pending = slices.DeleteFunc(pending, func(id string) bool {
			if released(precedence, id, done) {
				done[id] = true
				return true
			}
			return false
		})
		if len(pending) == n {
			return false
		}
	}
	return true
}

// searchState holds the best order of one search. It is private to the
// goroutine running the search.
type searchState struct {
	*problem
	deadline  time.Time
	budget    time.Duration
	bestOrder []string
	bestCost  float64
}

func (s *searchState) expired() bool { return time.Now().After(s.deadline) }

// offer records order when it beats the best cost so far.
func (s *searchState) offer(order []string, cost float64) bool {
	if cost >= s.bestCost {
		return false
	}
	s.bestOrder = slices.Clone(order)
	s.bestCost = cost
	return true
}

// runner is the algorithm body; it reports candidates through st.offer.
type runner func(st *searchState) error

// base carries the published solution and the busy flag shared by all solvers.
type base struct {
	busy atomic.Bool

	mu    sync.Mutex
	g     *graph.Graph
	order []string
	cost  float64
}

func newBase() base {
	return base{cost: math.Inf(1)}
}

func (b *base) search(budget time.Duration, g *graph.Graph, rs *domain.RequestSet, run runner) <-chan Result {
	out := make(chan Result, 1)
	if budget <= 0 {
		close(out)
		return out
	}
	if !b.busy.CompareAndSwap(false, true) {
		out <- Result{Err: ErrSolverBusy}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		start := time.Now()
		res := b.execute(start, budget, g, rs, run)
		res.Elapsed = time.Since(start)
		b.busy.Store(false)
		out <- res
	}()
	return out
}

func (b *base) execute(start time.Time, budget time.Duration, g *graph.Graph, rs *domain.RequestSet, run runner) Result {
	p, err := newProblem(g, rs)
	if err != nil {
		return Result{Err: err}
	}

	st := &searchState{
		problem:  p,
		deadline: start.Add(budget),
		budget:   budget,
		bestCost: math.Inf(1),
	}
	if len(p.points) == 1 {
		st.offer(p.points, 0)
	} else if err := run(st); err != nil {
		return Result{Err: err}
	}

	b.mu.Lock()
	b.g = g
	b.order = st.bestOrder
	b.cost = st.bestCost
	b.mu.Unlock()

	if st.bestOrder == nil {
		return Result{Err: ErrNoSolution}
	}
	tour, err := AssembleTour(g, st.bestOrder, st.bestCost)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Tour: tour, Cost: st.bestCost}
}

// Solution returns the best visiting order of the last search, depot first.
func (b *base) Solution() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.order)
}

// SolutionCost returns +Inf until a feasible order has been found.
func (b *base) SolutionCost() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cost
}

func (b *base) Tour() (*domain.Tour, error) {
	b.mu.Lock()
	g, order, cost := b.g, b.order, b.cost
	b.mu.Unlock()
	if order == nil {
		return nil, ErrNoSolution
	}
	return AssembleTour(g, order, cost)
}

// Feasible reports whether every delivery in order comes after its pickup.
// precedence maps delivery ids to their pickup ids.
func Feasible(order []string, precedence map[string][]string) bool {
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for i, id := range order {
		for _, pickup := range precedence[id] {
			k, ok := pos[pickup]
			if !ok || k >= i {
				return false
			}
		}
	}
	return true
}

// OrderCost sums the edge costs of the closed tour through order.
// A missing edge makes the cost +Inf.
func OrderCost(g *graph.Graph, order []string) float64 {
	if len(order) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(order); i++ {
		total += g.Cost(order[i-1], order[i])
	}
	return total + g.Cost(order[len(order)-1], order[0])
}

// AssembleTour joins the realized paths of consecutive edges of order and the
// closing edge back to order[0].
func AssembleTour(g *graph.Graph, order []string, cost float64) (*domain.Tour, error) {
	if len(order) == 0 {
		return nil, ErrNoSolution
	}

	t := &domain.Tour{Order: slices.Clone(order), Cost: cost}
	if len(order) == 1 {
		return t, nil
	}

	t.Legs = make([]domain.Path, 0, len(order))
	for i := range order {
		from, to := order[i], order[(i+1)%len(order)]
		p, ok := g.Edge(from, to)
		if !ok {
			return nil, fmt.Errorf("assemble tour: %w", &graph.NoRouteError{From: from, To: to})
		}
		t.Legs = append(t.Legs, p)
	}
	return t, nil
}
