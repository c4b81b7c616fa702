package repositories

import (
	"time"

	"tour-planner-service/internal/domain"
)

// JSON shape of a stored tour plan.
type tourRecord struct {
	Order     []string         `json:"order"`
	Legs      []pathRecord     `json:"legs"`
	Cost      float64          `json:"cost"`
	Speed     float64          `json:"speed_mps"`
	ElapsedMS int64            `json:"elapsed_ms"`
	Requests  requestSetRecord `json:"requests"`
}

type pathRecord struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Cost        float64         `json:"cost"`
	Segments    []segmentRecord `json:"segments"`
}

type segmentRecord struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Length      float64 `json:"length"`
	Name        string  `json:"name,omitempty"`
}

type requestSetRecord struct {
	ID        string          `json:"id,omitempty"`
	NetworkID string          `json:"network_id,omitempty"`
	Depot     string          `json:"depot"`
	Departure time.Time       `json:"departure"`
	Finish    *time.Time      `json:"finish,omitempty"`
	Requests  []requestRecord `json:"requests"`
}

type requestRecord struct {
	Pickup           string     `json:"pickup"`
	Delivery         string     `json:"delivery"`
	PickupDuration   int        `json:"pickup_duration"`
	DeliveryDuration int        `json:"delivery_duration"`
	PickupAt         *time.Time `json:"pickup_at,omitempty"`
	DeliveryAt       *time.Time `json:"delivery_at,omitempty"`
}

func toTourRecord(p *domain.TourPlan) tourRecord {
	rec := tourRecord{
		Speed:     p.SpeedMetersPerSecond,
		ElapsedMS: p.Elapsed.Milliseconds(),
	}
	if p.Tour != nil {
		rec.Order = p.Tour.Order
		rec.Cost = p.Tour.Cost
		rec.Legs = make([]pathRecord, 0, len(p.Tour.Legs))
		for _, l := range p.Tour.Legs {
			rec.Legs = append(rec.Legs, toPathRecord(l))
		}
	}
	if p.Requests != nil {
		rec.Requests = toRequestSetRecord(p.Requests)
	}
	return rec
}

func (rec tourRecord) plan(id, networkID, algorithm string, computedAt time.Time) *domain.TourPlan {
	t := &domain.Tour{Order: rec.Order, Cost: rec.Cost}
	for _, l := range rec.Legs {
		t.Legs = append(t.Legs, l.path())
	}
	return &domain.TourPlan{
		ID:                   id,
		NetworkID:            networkID,
		Algorithm:            algorithm,
		Tour:                 t,
		Requests:             rec.Requests.requestSet(),
		SpeedMetersPerSecond: rec.Speed,
		ComputedAt:           computedAt,
		Elapsed:              time.Duration(rec.ElapsedMS) * time.Millisecond,
	}
}

func toPathRecord(p domain.Path) pathRecord {
	out := pathRecord{Origin: p.Origin, Destination: p.Destination, Cost: p.Cost}
	out.Segments = make([]segmentRecord, 0, len(p.Segments))
	for _, s := range p.Segments {
		out.Segments = append(out.Segments, segmentRecord{Origin: s.Origin, Destination: s.Destination, Length: s.Length, Name: s.Name})
	}
	return out
}

func (r pathRecord) path() domain.Path {
	p := domain.Path{Origin: r.Origin, Destination: r.Destination, Cost: r.Cost}
	p.Segments = make([]domain.Segment, 0, len(r.Segments))
	for _, s := range r.Segments {
		p.Segments = append(p.Segments, domain.Segment{Origin: s.Origin, Destination: s.Destination, Length: s.Length, Name: s.Name})
	}
	return p
}

func toRequestSetRecord(rs *domain.RequestSet) requestSetRecord {
	out := requestSetRecord{
		ID:        rs.ID,
		NetworkID: rs.NetworkID,
		Depot:     rs.DepotID,
		Departure: rs.DepartureTime,
		Finish:    rs.FinishTime,
		Requests:  make([]requestRecord, 0, len(rs.Requests)),
	}
	for _, r := range rs.Requests {
		out.Requests = append(out.Requests, requestRecord{
			Pickup:           r.PickupID,
			Delivery:         r.DeliveryID,
			PickupDuration:   r.PickupDurationSeconds,
			DeliveryDuration: r.DeliveryDurationSeconds,
			PickupAt:         r.PickupAt,
			DeliveryAt:       r.DeliveryAt,
		})
	}
	return out
}

func (r requestSetRecord) requestSet() *domain.RequestSet {
	rs := domain.NewRequestSet(r.Depot, r.Departure)
	rs.ID = r.ID
	rs.NetworkID = r.NetworkID
	rs.FinishTime = r.Finish
	for _, req := range r.Requests {
		rs.Add(&domain.Request{
			PickupID:                req.Pickup,
			DeliveryID:              req.Delivery,
			PickupDurationSeconds:   req.PickupDuration,
			DeliveryDurationSeconds: req.DeliveryDuration,
			PickupAt:                req.PickupAt,
			DeliveryAt:              req.DeliveryAt,
		})
	}
	return rs
}
