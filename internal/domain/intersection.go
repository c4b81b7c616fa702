package domain

import "github.com/paulmach/orb"

// Immutable road network node located at a geographic point.
// Location is stored in orb's [lon, lat] order.
type Intersection struct {
	ID       string
	Location orb.Point
}

func NewIntersection(id string, lat, lon float64) Intersection {
	return Intersection{ID: id, Location: orb.Point{lon, lat}}
}

func (i Intersection) Lat() float64 { return i.Location.Lat() }

func (i Intersection) Lon() float64 { return i.Location.Lon() }
