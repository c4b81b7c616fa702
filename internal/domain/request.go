package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var ErrInvalidRequest = errors.New("invalid request")

// DefaultSpeedMetersPerSecond is a cyclist riding at 15 km/h.
const DefaultSpeedMetersPerSecond = 15.0 / 3.6

const clockLayout = "15:04:05"

// Represents a single pickup/delivery pair served by the vehicle.
// Pass-through times are populated after a tour has been computed and applied.
type Request struct {
	PickupID                string
	DeliveryID              string
	PickupDurationSeconds   int
	DeliveryDurationSeconds int
	PickupAt                *time.Time
	DeliveryAt              *time.Time
}

func (r *Request) Validate() error {
	if strings.TrimSpace(r.PickupID) == "" || strings.TrimSpace(r.DeliveryID) == "" {
		return fmt.Errorf("validate request: pickup and delivery ids must be non-empty: %w", ErrInvalidRequest)
	}
	if r.PickupID == r.DeliveryID {
		return fmt.Errorf("validate request: pickup and delivery share id %q: %w", r.PickupID, ErrInvalidRequest)
	}
	if r.PickupDurationSeconds < 0 || r.DeliveryDurationSeconds < 0 {
		return fmt.Errorf("validate request %q->%q: durations must be non-negative: %w", r.PickupID, r.DeliveryID, ErrInvalidRequest)
	}
	return nil
}

// The depot, departure time and requests of one tour.
// Request order is meaningful only after ApplyTour, which sorts by pickup time.
type RequestSet struct {
	ID            string
	NetworkID     string
	DepotID       string
	DepartureTime time.Time
	Requests      []*Request
	FinishTime    *time.Time
}

func NewRequestSet(depotID string, departure time.Time) *RequestSet {
	return &RequestSet{DepotID: depotID, DepartureTime: departure}
}

// ParseClock parses a wall-clock time such as "08:00:00" or "08:00".
func ParseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{clockLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse clock %q: expected HH:MM:SS", s)
}

// FormatClock renders t as HH:MM:SS.
func FormatClock(t time.Time) string { return t.Format(clockLayout) }

// Clone returns a deep copy, so schedules applied to it leave s untouched.
func (s *RequestSet) Clone() *RequestSet {
	out := *s
	out.Requests = make([]*Request, len(s.Requests))
	for i, r := range s.Requests {
		c := *r
		out.Requests[i] = &c
	}
	return &out
}

func (s *RequestSet) Add(r *Request) {
	s.Requests = append(s.Requests, r)
}

// Remove deletes the request with the given pickup and delivery ids.
func (s *RequestSet) Remove(pickupID, deliveryID string) bool {
	for i, r := range s.Requests {
		if r.PickupID == pickupID && r.DeliveryID == deliveryID {
			s.Requests = slices.Delete(s.Requests, i, i+1)
			return true
		}
	}
	return false
}

// PointsOfInterest returns the depot followed by each request's pickup and delivery.
func (s *RequestSet) PointsOfInterest() []string {
	seen := make(map[string]struct{}, 1+2*len(s.Requests))
	out := make([]string, 0, 1+2*len(s.Requests))
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	add(s.DepotID)
	for _, r := range s.Requests {
		add(r.PickupID)
		add(r.DeliveryID)
	}
	return out
}

// Precedence maps each delivery id to the pickup ids that must be visited before it.
func (s *RequestSet) Precedence() map[string][]string {
	out := make(map[string][]string, len(s.Requests))
	for _, r := range s.Requests {
		if !slices.Contains(out[r.DeliveryID], r.PickupID) {
			out[r.DeliveryID] = append(out[r.DeliveryID], r.PickupID)
		}
	}
	return out
}

// Validate checks every request, that the depot is neither a pickup nor a
// delivery, and that no pickup/delivery pair is listed twice. Requests may
// otherwise share points.
func (s *RequestSet) Validate() error {
	if strings.TrimSpace(s.DepotID) == "" {
		return fmt.Errorf("validate request set: depot id must be non-empty: %w", ErrInvalidRequest)
	}

	type pair struct{ pickup, delivery string }
	seen := make(map[pair]struct{}, len(s.Requests))
	for i, r := range s.Requests {
		if r == nil {
			return fmt.Errorf("validate request set: request %d is nil: %w", i+1, ErrInvalidRequest)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("validate request set: request %d: %w", i+1, err)
		}
		if r.PickupID == s.DepotID || r.DeliveryID == s.DepotID {
			return fmt.Errorf("validate request set: request %d uses depot %q: %w", i+1, s.DepotID, ErrInvalidRequest)
		}
		k := pair{r.PickupID, r.DeliveryID}
		if _, ok := seen[k]; ok {
			return fmt.Errorf("validate request set: request %q->%q listed twice: %w", r.PickupID, r.DeliveryID, ErrInvalidRequest)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// ApplyTour stamps pickup/delivery pass-through times by walking the tour's
// segments at a constant speed (meters per second) from the departure time.
//
// Whenever a segment starts at a pickup or delivery point, that point's time is
// stamped and its service duration added; a point passed through again is
// stamped again. Each segment then adds its whole-second travel time.
// Requests end up sorted by pickup time.
func (s *RequestSet) ApplyTour(tour *Tour, speed float64) error {
	if tour == nil {
		return errors.New("apply tour: tour must be non-nil")
	}
	if !(speed > 0) {
		return fmt.Errorf("apply tour: speed must be positive, got %v", speed)
	}

	pickups := make(map[string][]*Request, len(s.Requests))
	deliveries := make(map[string][]*Request, len(s.Requests))
	for _, r := range s.Requests {
		r.PickupAt, r.DeliveryAt = nil, nil
		pickups[r.PickupID] = append(pickups[r.PickupID], r)
		deliveries[r.DeliveryID] = append(deliveries[r.DeliveryID], r)
	}

	current := s.DepartureTime
	for _, seg := range tour.Segments() {
		for _, r := range pickups[seg.Origin] {
			at := current
			r.PickupAt = &at
			current = current.Add(time.Duration(r.PickupDurationSeconds) * time.Second)
		}
		for _, r := range deliveries[seg.Origin] {
			at := current
			r.DeliveryAt = &at
			current = current.Add(time.Duration(r.DeliveryDurationSeconds) * time.Second)
		}

		current = current.Add(time.Duration(int(seg.Length/speed)) * time.Second)
	}

	finish := current
	s.FinishTime = &finish

	for _, r := range s.Requests {
		if r.PickupAt == nil || r.DeliveryAt == nil {
			return fmt.Errorf("apply tour: request %q->%q not visited by tour", r.PickupID, r.DeliveryID)
		}
	}

	slices.SortStableFunc(s.Requests, func(a, b *Request) int {
		return a.PickupAt.Compare(*b.PickupAt)
	})
	return nil
}
