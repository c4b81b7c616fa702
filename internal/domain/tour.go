package domain

import "time"

// Closed road-level route visiting every point of interest once.
// Order starts at the depot; Legs[i] joins Order[i] to the next point
// and the last leg returns to the depot. A depot-only tour has no legs.
// A Tour is immutable planning data once built.
type Tour struct {
	Order []string
	Legs  []Path
	Cost  float64
}

// Segments flattens the legs into the full road-level segment sequence.
func (t *Tour) Segments() []Segment {
	n := 0
	for _, l := range t.Legs {
		n += len(l.Segments)
	}

	out := make([]Segment, 0, n)
	for _, l := range t.Legs {
		out = append(out, l.Segments...)
	}
	return out
}

// Length sums the segment lengths of the whole route.
func (t *Tour) Length() float64 {
	total := 0.0
	for _, l := range t.Legs {
		for _, s := range l.Segments {
			total += s.Length
		}
	}
	return total
}

// Persisted outcome of planning one tour: the route plus its schedule.
type TourPlan struct {
	ID                   string
	NetworkID            string
	Algorithm            string
	Tour                 *Tour
	Requests             *RequestSet
	SpeedMetersPerSecond float64
	ComputedAt           time.Time
	Elapsed              time.Duration
}
