package graph

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"tour-planner-service/internal/domain"
)

var (
	ErrNoRoute      = errors.New("no route")
	ErrUnknownPoint = errors.New("point of interest not in road network")
)

// NoRouteError names the pair of points of interest that cannot be connected.
type NoRouteError struct {
	From string
	To   string
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no route has been found from %s to %s", e.From, e.To)
}

func (e *NoRouteError) Is(target error) bool { return target == ErrNoRoute }

// PathFinder returns the shortest path from source to every target.
// It must fail rather than omit a target.
type PathFinder func(ctx context.Context, source string, targets []string) (map[string]domain.Path, error)

// Reduce builds the complete graph over points by running Dijkstra from each of them.
func Reduce(ctx context.Context, network *domain.RoadNetwork, points []string) (*Graph, error) {
	if network == nil {
		return nil, errors.New("reduce: network must be non-nil")
	}
	for _, p := range points {
		if !network.HasIntersection(p) {
			return nil, fmt.Errorf("reduce: %q: %w", p, ErrUnknownPoint)
		}
	}
	return ReduceWith(ctx, points, DijkstraFinder(network))
}

// ReduceWith builds the complete graph over points using find for each source.
// Sources are searched concurrently; the call returns once all of them are done.
// Any failure discards the whole graph.
func ReduceWith(ctx context.Context, points []string, find PathFinder) (*Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}

	uniq := make([]string, 0, len(points))
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		uniq = append(uniq, p)
	}

	results := make([]map[string]domain.Path, len(uniq))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, source := range uniq {
		targets := make([]string, 0, len(uniq)-1)
		for _, t := range uniq {
			if t != source {
				targets = append(targets, t)
			}
		}

		eg.Go(func() error {
			paths, err := find(egCtx, source, targets)
			if err != nil {
				return err
			}
			for _, t := range targets {
				if _, ok := paths[t]; !ok {
					return &NoRouteError{From: source, To: t}
				}
			}
			results[i] = paths
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}

	g := New()
	for _, p := range uniq {
		g.AddVertex(p)
	}
	for _, paths := range results {
		for _, p := range paths {
			g.AddEdge(p)
		}
	}
	g.CalculateMinCost()
	return g, nil
}

// DijkstraFinder searches network from the source until every target is settled.
func DijkstraFinder(network *domain.RoadNetwork) PathFinder {
	return func(ctx context.Context, source string, targets []string) (map[string]domain.Path, error) {
		return shortestPaths(ctx, network, source, targets)
	}
}

// shortestPaths is a label-setting search with lazy decrease-key.
// It stops as soon as every target has a final distance.
func shortestPaths(
	ctx context.Context,
	network *domain.RoadNetwork,
	source string,
	targets []string,
) (map[string]domain.Path, error) {
	remaining := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if t != source {
			remaining[t] = struct{}{}
		}
	}

	dist := map[string]float64{source: 0}
	prev := map[string]string{}
	settled := map[string]bool{}

	pq := &nodePQ{}
	heap.Push(pq, &nodeItem{id: source, dist: 0})

	steps := 0
	for pq.Len() > 0 && len(remaining) > 0 {
		steps++
		if steps&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		item := heap.Pop(pq).(*nodeItem)
		u := item.id
		if settled[u] || item.dist > dist[u] {
			continue
		}
		settled[u] = true
		delete(remaining, u)

		for _, v := range network.Adjacent(u) {
			if settled[v] {
				continue
			}
			seg, _ := network.Segment(u, v)
			alt := dist[u] + seg.Length
			if d, ok := dist[v]; !ok || alt < d {
				dist[v] = alt
				prev[v] = u
				heap.Push(pq, &nodeItem{id: v, dist: alt})
			}
		}
	}

	out := make(map[string]domain.Path, len(targets))
	for _, t := range targets {
		if t == source {
			continue
		}
		if !settled[t] {
			return nil, &NoRouteError{From: source, To: t}
		}

		var segs []domain.Segment
		for cur := t; cur != source; cur = prev[cur] {
			seg, _ := network.Segment(prev[cur], cur)
			segs = append(segs, seg)
		}
		for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
			segs[i], segs[j] = segs[j], segs[i]
		}

		out[t] = domain.Path{Origin: source, Destination: t, Cost: dist[t], Segments: segs}
	}
	return out, nil
}

type nodeItem struct {
	id   string
	dist float64
}

// nodePQ is a min-heap of nodeItem ordered by distance.
type nodePQ []*nodeItem

func (pq nodePQ) Len() int           { return len(pq) }
func (pq nodePQ) Less(i, j int) bool { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodePQ) Push(x any) { *pq = append(*pq, x.(*nodeItem)) }

func (pq *nodePQ) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return it
}
