package ports

import (
	"context"

	"tour-planner-service/internal/domain"
)

// Port: persistence of computed tour plans.
type TourRepository interface {
	// Insert or replace the plan with the same id.
	SaveTour(ctx context.Context, plan *domain.TourPlan) error
	GetTour(ctx context.Context, id string) (*domain.TourPlan, error)
}
