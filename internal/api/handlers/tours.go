package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tour-planner-service/internal/api/dto"
	"tour-planner-service/internal/config"
	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/ports"
	"tour-planner-service/internal/services"
)

// TourHandler plans, returns and edits tours.
type TourHandler struct {
	Networks    ports.RoadNetworkRepository
	RequestSets ports.RequestSetRepository
	Tours       ports.TourRepository
	// Cache is optional.
	Cache    ports.PathCache
	Defaults config.Solver
}

// Plan computes a tour for a stored or inline request set.
func (h *TourHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PlanTourRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	svcReq := services.PlanTourRequest{
		NetworkID:    strings.TrimSpace(req.NetworkID),
		RequestSetID: strings.TrimSpace(req.RequestSetID),
		Algorithm:    strings.TrimSpace(req.Algorithm),
		TimeBudget:   h.Defaults.TimeBudget(),
		Annealing:    h.Defaults.Annealing,
	}
	if svcReq.Algorithm == "" {
		svcReq.Algorithm = h.Defaults.Algorithm
	}

	if req.TimeBudgetMS < 0 {
		writeError(w, r, http.StatusBadRequest, "time_budget_ms must be positive")
		return
	}
	if req.TimeBudgetMS > h.Defaults.MaxTimeBudgetMS {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("time_budget_ms must not exceed %d", h.Defaults.MaxTimeBudgetMS))
		return
	}
	if req.TimeBudgetMS > 0 {
		svcReq.TimeBudget = time.Duration(req.TimeBudgetMS) * time.Millisecond
	}

	speedKMH := h.Defaults.SpeedKMH
	if req.SpeedKMH < 0 {
		writeError(w, r, http.StatusBadRequest, "speed_kmh must be positive")
		return
	}
	if req.SpeedKMH > 0 {
		speedKMH = req.SpeedKMH
	}
	svcReq.SpeedMetersPerSecond = speedKMH / 3.6

	if svcReq.RequestSetID == "" {
		rs, err := inlineRequestSet(req)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		svcReq.Requests = rs
	}

	plan, err := services.PlanTour(r.Context(), svcReq, h.Networks, h.RequestSets, h.Tours, h.Cache)
	if err != nil {
		writeServiceError(w, r, "plan tour", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, tourResponse(plan))
}

func (h *TourHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	plan, err := h.Tours.GetTour(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "get tour", err)
		return
	}

	writeJSON(w, r, http.StatusOK, tourResponse(plan))
}

// RemoveRequest deletes the pickup/delivery pair given as query parameters
// and returns the rescheduled tour.
func (h *TourHandler) RemoveRequest(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodDelete) {
		return
	}

	q := r.URL.Query()
	pickup := strings.TrimSpace(q.Get("pickup"))
	delivery := strings.TrimSpace(q.Get("delivery"))
	if pickup == "" || delivery == "" {
		writeError(w, r, http.StatusBadRequest, "pickup and delivery are required")
		return
	}

	plan, err := services.RemoveRequest(r.Context(), r.PathValue("id"), pickup, delivery, h.Networks, h.Tours, h.Cache)
	if err != nil {
		writeServiceError(w, r, "remove request", err)
		return
	}

	writeJSON(w, r, http.StatusOK, tourResponse(plan))
}

func inlineRequestSet(req dto.PlanTourRequest) (*domain.RequestSet, error) {
	depot := strings.TrimSpace(req.Depot)
	if depot == "" {
		return nil, errors.New("request_set_id or depot is required")
	}
	if strings.TrimSpace(req.NetworkID) == "" {
		return nil, errors.New("network_id is required with inline requests")
	}

	departure, err := domain.ParseClock(req.Departure)
	if err != nil {
		return nil, errors.New("departure must be HH:MM:SS")
	}

	rs := domain.NewRequestSet(depot, departure)
	for _, in := range req.Requests {
		rs.Add(&domain.Request{
			PickupID:                strings.TrimSpace(in.Pickup),
			DeliveryID:              strings.TrimSpace(in.Delivery),
			PickupDurationSeconds:   in.PickupDuration,
			DeliveryDurationSeconds: in.DeliveryDuration,
		})
	}
	return rs, nil
}

func tourResponse(p *domain.TourPlan) dto.TourResponse {
	res := dto.TourResponse{
		ID:         p.ID,
		NetworkID:  p.NetworkID,
		Algorithm:  p.Algorithm,
		SpeedKMH:   p.SpeedMetersPerSecond * 3.6,
		ComputedAt: p.ComputedAt,
		ElapsedMS:  p.Elapsed.Milliseconds(),
		Order:      []string{},
		Requests:   []dto.ScheduledRequestResponse{},
		Legs:       []dto.LegResponse{},
	}

	if t := p.Tour; t != nil {
		res.Order = t.Order
		res.Cost = t.Cost
		for _, l := range t.Legs {
			res.Legs = append(res.Legs, dto.LegResponse{
				Origin:      l.Origin,
				Destination: l.Destination,
				Cost:        l.Cost,
				Segments:    segmentResponses(l.Segments),
			})
		}
	}

	if rs := p.Requests; rs != nil {
		res.Depot = rs.DepotID
		res.Departure = domain.FormatClock(rs.DepartureTime)
		if rs.FinishTime != nil {
			res.Finish = domain.FormatClock(*rs.FinishTime)
		}
		for _, req := range rs.Requests {
			item := dto.ScheduledRequestResponse{
				Pickup:           req.PickupID,
				Delivery:         req.DeliveryID,
				PickupDuration:   req.PickupDurationSeconds,
				DeliveryDuration: req.DeliveryDurationSeconds,
			}
			if req.PickupAt != nil {
				item.PickupAt = domain.FormatClock(*req.PickupAt)
			}
			if req.DeliveryAt != nil {
				item.DeliveryAt = domain.FormatClock(*req.DeliveryAt)
			}
			res.Requests = append(res.Requests, item)
		}
	}

	return res
}
