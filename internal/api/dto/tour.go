package dto

import "time"

type RequestInput struct {
	Pickup           string `json:"pickup"`
	Delivery         string `json:"delivery"`
	PickupDuration   int    `json:"pickup_duration"`
	DeliveryDuration int    `json:"delivery_duration"`
}

// PlanTourRequest names a stored request set or carries one inline
// (depot, departure and requests).
type PlanTourRequest struct {
	NetworkID    string         `json:"network_id"`
	RequestSetID string         `json:"request_set_id"`
	Depot        string         `json:"depot"`
	Departure    string         `json:"departure"`
	Requests     []RequestInput `json:"requests"`
	Algorithm    string         `json:"algorithm"`
	TimeBudgetMS int            `json:"time_budget_ms"`
	SpeedKMH     float64        `json:"speed_kmh"`
}

type LegResponse struct {
	Origin      string            `json:"origin"`
	Destination string            `json:"destination"`
	Cost        float64           `json:"cost"`
	Segments    []SegmentResponse `json:"segments"`
}

type ScheduledRequestResponse struct {
	Pickup           string `json:"pickup"`
	Delivery         string `json:"delivery"`
	PickupDuration   int    `json:"pickup_duration"`
	DeliveryDuration int    `json:"delivery_duration"`
	PickupAt         string `json:"pickup_at,omitempty"`
	DeliveryAt       string `json:"delivery_at,omitempty"`
}

type TourResponse struct {
	ID         string                     `json:"id"`
	NetworkID  string                     `json:"network_id"`
	Algorithm  string                     `json:"algorithm"`
	Depot      string                     `json:"depot"`
	Order      []string                   `json:"order"`
	Cost       float64                    `json:"cost"`
	SpeedKMH   float64                    `json:"speed_kmh"`
	Departure  string                     `json:"departure"`
	Finish     string                     `json:"finish,omitempty"`
	ComputedAt time.Time                  `json:"computed_at"`
	ElapsedMS  int64                      `json:"elapsed_ms"`
	Requests   []ScheduledRequestResponse `json:"requests"`
	Legs       []LegResponse              `json:"legs"`
}
