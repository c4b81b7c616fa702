package ports

import (
	"context"
	"errors"

	"tour-planner-service/internal/domain"
)

// ErrNotFound is returned by repositories when no record matches the id.
var ErrNotFound = errors.New("not found")

// Summary of a stored road network, without its graph.
type NetworkInfo struct {
	ID               string
	NumIntersections int
	NumSegments      int
}

// Port: a boundary for loading road networks from a data source.
type RoadNetworkRepository interface {
	// List every stored network, ordered by id.
	ListNetworks(ctx context.Context) ([]NetworkInfo, error)
	// Load the full network with its intersections and segments.
	GetNetwork(ctx context.Context, id string) (*domain.RoadNetwork, error)
}
