package domain

// Directed street segment between two intersections.
// Many segments may share a Name (a street).
type Segment struct {
	Origin      string
	Destination string
	Length      float64
	Name        string
}

// SegmentKey identifies the segment joining an ordered pair of intersections.
type SegmentKey struct {
	Origin      string
	Destination string
}

func (s Segment) Key() SegmentKey {
	return SegmentKey{Origin: s.Origin, Destination: s.Destination}
}

// Realized road-level path between two points of interest.
// It is the edge type of the reduced graph and the leg type of a Tour.
type Path struct {
	Origin      string
	Destination string
	Cost        float64
	Segments    []Segment
}
