package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/metrics"
	"tour-planner-service/internal/platform/obs"
	"tour-planner-service/internal/ports"
	"tour-planner-service/internal/tsp"
)

var ErrInvalidTimeBudget = errors.New("time budget must be positive")

type PlanTourRequest struct {
	// NetworkID may be left empty when the request set names its network.
	NetworkID    string
	RequestSetID string
	// Requests is used when RequestSetID is empty.
	Requests             *domain.RequestSet
	Algorithm            string
	TimeBudget           time.Duration
	SpeedMetersPerSecond float64
	Annealing            tsp.AnnealingOptions
}

// PlanTour computes, schedules and stores the tour of one request set.
func PlanTour(
	ctx context.Context,
	req PlanTourRequest,
	networks ports.RoadNetworkRepository,
	requestSets ports.RequestSetRepository,
	tours ports.TourRepository,
	cache ports.PathCache,
) (_ *domain.TourPlan, err error) {
	defer obs.Time(ctx, "services.PlanTour")(&err)

	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = tsp.AlgorithmBranchAndBound
	}
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ToursPlanned.WithLabelValues(algorithm, status).Inc()
	}()

	if req.TimeBudget <= 0 {
		return nil, fmt.Errorf("plan tour: %v: %w", req.TimeBudget, ErrInvalidTimeBudget)
	}
	speed := req.SpeedMetersPerSecond
	if speed <= 0 {
		speed = domain.DefaultSpeedMetersPerSecond
	}

	rs, err := loadRequestSet(ctx, req, requestSets)
	if err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	networkID := strings.TrimSpace(req.NetworkID)
	if networkID == "" {
		networkID = rs.NetworkID
	}
	if networkID == "" {
		return nil, fmt.Errorf("plan tour: network id is required: %w", domain.ErrInvalidRequest)
	}

	network, err := networks.GetNetwork(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	solver, err := tsp.New(algorithm, req.Annealing)
	if err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	points := rs.PointsOfInterest()
	doneReduce := obs.Time(ctx, "services.PlanTour.reduce")
	g, err := reduceNetwork(ctx, network, points, cache)
	doneReduce(&err)
	if err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	doneSolve := obs.Time(ctx, "services.PlanTour.solve")
	res, err := awaitResult(ctx, solver.Search(req.TimeBudget, g, rs))
	doneSolve(&err)
	if err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}
	metrics.SolveDuration.WithLabelValues(algorithm).Observe(res.Elapsed.Seconds())
	metrics.TourCost.WithLabelValues(algorithm).Observe(res.Cost)

	if err := rs.ApplyTour(res.Tour, speed); err != nil {
		return nil, fmt.Errorf("plan tour: %w", err)
	}

	rs.NetworkID = networkID
	plan := &domain.TourPlan{
		ID:                   uuid.New().String(),
		NetworkID:            networkID,
		Algorithm:            algorithm,
		Tour:                 res.Tour,
		Requests:             rs,
		SpeedMetersPerSecond: speed,
		ComputedAt:           time.Now().UTC(),
		Elapsed:              res.Elapsed,
	}
	if err := tours.SaveTour(ctx, plan); err != nil {
		return nil, fmt.Errorf("plan tour: save: %w", err)
	}

	log.Printf("tour planned id=%s network=%s algorithm=%s points=%d cost=%.1f elapsed=%dms",
		plan.ID, networkID, algorithm, len(points), res.Cost, res.Elapsed.Milliseconds())
	return plan, nil
}

func loadRequestSet(ctx context.Context, req PlanTourRequest, requestSets ports.RequestSetRepository) (*domain.RequestSet, error) {
	if id := strings.TrimSpace(req.RequestSetID); id != "" {
		if requestSets == nil {
			return nil, errors.New("request set repository is not configured")
		}
		return requestSets.GetRequestSet(ctx, id)
	}
	if req.Requests == nil {
		return nil, fmt.Errorf("request set id or inline requests required: %w", domain.ErrInvalidRequest)
	}
	return req.Requests.Clone(), nil
}

// awaitResult waits for the solver. The search itself keeps running to its
// budget if ctx ends first; only the wait is abandoned.
func awaitResult(ctx context.Context, ch <-chan tsp.Result) (tsp.Result, error) {
	select {
	case res, ok := <-ch:
		if !ok {
			return tsp.Result{}, tsp.ErrNoSolution
		}
		if res.Err != nil {
			return tsp.Result{}, res.Err
		}
		return res, nil
	case <-ctx.Done():
		return tsp.Result{}, ctx.Err()
	}
}
