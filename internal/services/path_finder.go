package services

import (
	"context"
	"fmt"
	"log"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/graph"
	"tour-planner-service/internal/metrics"
	"tour-planner-service/internal/ports"
)

// reduceNetwork builds the complete graph over points, reading and filling
// the path cache when one is supplied.
func reduceNetwork(
	ctx context.Context,
	network *domain.RoadNetwork,
	points []string,
	cache ports.PathCache,
) (*graph.Graph, error) {
	for _, p := range points {
		if !network.HasIntersection(p) {
			return nil, fmt.Errorf("reduce: %q: %w", p, graph.ErrUnknownPoint)
		}
	}

	finder := graph.DijkstraFinder(network)
	if cache != nil {
		scope := ports.PathScope{NetworkID: network.ID, Revision: network.Revision()}
		finder = cachedFinder(scope, finder, cache)
	}
	return graph.ReduceWith(ctx, points, finder)
}

// cachedFinder serves a source from the cache when every target is present
// and otherwise runs find and stores its result. Cache failures are logged and
// fall through to find.
func cachedFinder(scope ports.PathScope, find graph.PathFinder, cache ports.PathCache) graph.PathFinder {
	return func(ctx context.Context, source string, targets []string) (map[string]domain.Path, error) {
		cached, err := cache.GetPaths(ctx, scope, source, targets)
		switch {
		case err != nil:
			metrics.PathCacheLookups.WithLabelValues("error").Inc()
			log.Printf("path cache get failed network=%s revision=%s origin=%s err=%v", scope.NetworkID, scope.Revision, source, err)
		case len(cached) == len(targets):
			metrics.PathCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.PathCacheLookups.WithLabelValues("miss").Inc()
		}

		paths, err := find(ctx, source, targets)
		if err != nil {
			return nil, err
		}

		if err := cache.SetPaths(ctx, scope, source, paths); err != nil {
			log.Printf("path cache set failed network=%s revision=%s origin=%s err=%v", scope.NetworkID, scope.Revision, source, err)
		}
		return paths, nil
	}
}
