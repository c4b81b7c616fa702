package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/platform/obs"
	"tour-planner-service/internal/ports"
	"tour-planner-service/internal/tsp"
)

// RemoveRequest drops one pickup/delivery pair from a stored tour. Points no
// other request uses leave the order, the rest keep it; only the road route
// and the schedule are rebuilt.
func RemoveRequest(
	ctx context.Context,
	tourID string,
	pickupID string,
	deliveryID string,
	networks ports.RoadNetworkRepository,
	tours ports.TourRepository,
	cache ports.PathCache,
) (_ *domain.TourPlan, err error) {
	defer obs.Time(ctx, "services.RemoveRequest")(&err)

	plan, err := tours.GetTour(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("remove request: %w", err)
	}

	rs := plan.Requests.Clone()
	if !rs.Remove(pickupID, deliveryID) {
		return nil, fmt.Errorf("remove request: %q->%q in tour %q: %w", pickupID, deliveryID, tourID, ports.ErrNotFound)
	}

	// Points still used by another request stay in the order.
	keep := make(map[string]bool)
	for _, id := range rs.PointsOfInterest() {
		keep[id] = true
	}
	order := slices.DeleteFunc(slices.Clone(plan.Tour.Order), func(id string) bool {
		return !keep[id]
	})

	network, err := networks.GetNetwork(ctx, plan.NetworkID)
	if err != nil {
		return nil, fmt.Errorf("remove request: %w", err)
	}

	g, err := reduceNetwork(ctx, network, order, cache)
	if err != nil {
		return nil, fmt.Errorf("remove request: %w", err)
	}

	tour, err := tsp.AssembleTour(g, order, tsp.OrderCost(g, order))
	if err != nil {
		return nil, fmt.Errorf("remove request: %w", err)
	}
	if err := rs.ApplyTour(tour, plan.SpeedMetersPerSecond); err != nil {
		return nil, fmt.Errorf("remove request: %w", err)
	}

	updated := *plan
	updated.Tour = tour
	updated.Requests = rs
	updated.ComputedAt = time.Now().UTC()
	if err := tours.SaveTour(ctx, &updated); err != nil {
		return nil, fmt.Errorf("remove request: save: %w", err)
	}

	log.Printf("request removed tour=%s pickup=%s delivery=%s cost=%.1f", tourID, pickupID, deliveryID, tour.Cost)
	return &updated, nil
}
