package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/platform/db"
)

type IntersectionSeed struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type SegmentSeed struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Length      float64 `json:"length"`
	Name        string  `json:"name"`
}

type NetworkSeed struct {
	ID            string             `json:"id"`
	Intersections []IntersectionSeed `json:"intersections"`
	Segments      []SegmentSeed      `json:"segments"`
}

type RequestSeed struct {
	Pickup           string `json:"pickup"`
	Delivery         string `json:"delivery"`
	PickupDuration   int    `json:"pickup_duration"`
	DeliveryDuration int    `json:"delivery_duration"`
}

type RequestSetSeed struct {
	ID        string        `json:"id"`
	NetworkID string        `json:"network_id"`
	Depot     string        `json:"depot"`
	Departure string        `json:"departure"`
	Requests  []RequestSeed `json:"requests"`
}

// SeedFile is the layout of the JSON seed file.
type SeedFile struct {
	Networks    []NetworkSeed    `json:"networks"`
	RequestSets []RequestSetSeed `json:"request_sets"`
}

// Network converts the seed into a validated road network.
func (n NetworkSeed) Network() (*domain.RoadNetwork, error) {
	id := strings.TrimSpace(n.ID)
	if id == "" {
		return nil, fmt.Errorf("network seed: id cannot be empty")
	}

	network := domain.NewRoadNetwork(id)
	for i, is := range n.Intersections {
		if strings.TrimSpace(is.ID) == "" {
			return nil, fmt.Errorf("network seed %q: intersection at index %d: id cannot be empty", id, i+1)
		}
		network.AddIntersection(domain.NewIntersection(is.ID, is.Lat, is.Lon))
	}
	for _, s := range n.Segments {
		seg := domain.Segment{Origin: s.Origin, Destination: s.Destination, Length: s.Length, Name: s.Name}
		if err := network.AddSegment(seg); err != nil {
			return nil, fmt.Errorf("network seed %q: %w", id, err)
		}
	}
	return network, nil
}

// RequestSet converts the seed into a validated request set.
func (r RequestSetSeed) RequestSet() (*domain.RequestSet, error) {
	departure, err := domain.ParseClock(r.Departure)
	if err != nil {
		return nil, fmt.Errorf("request set seed %q: %w", r.ID, err)
	}

	rs := domain.NewRequestSet(strings.TrimSpace(r.Depot), departure)
	rs.ID = strings.TrimSpace(r.ID)
	rs.NetworkID = strings.TrimSpace(r.NetworkID)
	if rs.ID == "" {
		return nil, fmt.Errorf("request set seed: id cannot be empty")
	}
	for _, req := range r.Requests {
		rs.Add(&domain.Request{
			PickupID:                strings.TrimSpace(req.Pickup),
			DeliveryID:              strings.TrimSpace(req.Delivery),
			PickupDurationSeconds:   req.PickupDuration,
			DeliveryDurationSeconds: req.DeliveryDuration,
		})
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("request set seed %q: %w", rs.ID, err)
	}
	return rs, nil
}

// Populate the database with road networks and request sets from a JSON file.
func SeedFromJSON(sqlDB *sql.DB, dialect db.Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	return Seed(context.Background(), sqlDB, dialect, data)
}

// Seed stores every network and request set of data, replacing existing rows.
func Seed(ctx context.Context, sqlDB *sql.DB, dialect db.Dialect, data SeedFile) error {
	networks := NewSQLRoadNetworkRepository(sqlDB, dialect)
	for _, ns := range data.Networks {
		n, err := ns.Network()
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if err := networks.SaveNetwork(ctx, n); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	requestSets := NewSQLRequestSetRepository(sqlDB, dialect)
	for _, rss := range data.RequestSets {
		rs, err := rss.RequestSet()
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if err := requestSets.SaveRequestSet(ctx, rs); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	return nil
}
