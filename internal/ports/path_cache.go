package ports

import (
	"context"

	"tour-planner-service/internal/domain"
)

// Represents one version of a road network. Paths cached under one revision
// are never served for another.
type PathScope struct {
	NetworkID string
	Revision  string
}

// Contract for caching shortest paths between points of interest of a network.
// Destinations missing from the cache are absent from the result.
type PathCache interface {
	// Return the cached paths from origin to each destination found in the cache.
	GetPaths(ctx context.Context, scope PathScope, origin string, destinations []string) (map[string]domain.Path, error)
	// Store the given paths, all starting at origin.
	SetPaths(ctx context.Context, scope PathScope, origin string, paths map[string]domain.Path) error
}
