package ports

import (
	"context"

	"tour-planner-service/internal/domain"
)

// Port: a boundary for stored request sets.
type RequestSetRepository interface {
	// Load a request set. The returned value is a fresh copy the caller may mutate.
	GetRequestSet(ctx context.Context, id string) (*domain.RequestSet, error)
}
