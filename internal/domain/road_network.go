package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/paulmach/orb"
)

var (
	ErrUnknownIntersection = errors.New("unknown intersection")
	ErrInvalidSegment      = errors.New("invalid segment")
)

// Directed weighted graph of intersections and street segments.
// Every id referenced by the adjacency or the segment lookup is a known intersection;
// AddSegment enforces this.
type RoadNetwork struct {
	ID            string
	intersections map[string]Intersection
	adjacency     map[string][]string
	segments      map[SegmentKey]Segment
}

func NewRoadNetwork(id string) *RoadNetwork {
	return &RoadNetwork{
		ID:            id,
		intersections: make(map[string]Intersection),
		adjacency:     make(map[string][]string),
		segments:      make(map[SegmentKey]Segment),
	}
}

func (n *RoadNetwork) AddIntersection(i Intersection) {
	n.intersections[i.ID] = i
}

// Add a directed segment. Re-adding an existing origin/destination pair replaces it.
func (n *RoadNetwork) AddSegment(s Segment) error {
	if _, ok := n.intersections[s.Origin]; !ok {
		return fmt.Errorf("add segment %q->%q: origin: %w", s.Origin, s.Destination, ErrUnknownIntersection)
	}
	if _, ok := n.intersections[s.Destination]; !ok {
		return fmt.Errorf("add segment %q->%q: destination: %w", s.Origin, s.Destination, ErrUnknownIntersection)
	}
	if !(s.Length >= 0) || math.IsInf(s.Length, 1) {
		return fmt.Errorf("add segment %q->%q: length %v must be finite and non-negative: %w", s.Origin, s.Destination, s.Length, ErrInvalidSegment)
	}

	key := s.Key()
	if _, exists := n.segments[key]; !exists {
		n.adjacency[s.Origin] = append(n.adjacency[s.Origin], s.Destination)
	}
	n.segments[key] = s
	return nil
}

func (n *RoadNetwork) HasIntersection(id string) bool {
	_, ok := n.intersections[id]
	return ok
}

func (n *RoadNetwork) Intersection(id string) (Intersection, bool) {
	i, ok := n.intersections[id]
	return i, ok
}

// Adjacent returns the ids reachable from id through a single segment.
func (n *RoadNetwork) Adjacent(id string) []string {
	return n.adjacency[id]
}

func (n *RoadNetwork) Segment(origin, destination string) (Segment, bool) {
	s, ok := n.segments[SegmentKey{Origin: origin, Destination: destination}]
	return s, ok
}

func (n *RoadNetwork) SegmentsFrom(origin string) []Segment {
	adj := n.adjacency[origin]
	out := make([]Segment, 0, len(adj))
	for _, d := range adj {
		out = append(out, n.segments[SegmentKey{Origin: origin, Destination: d}])
	}
	return out
}

func (n *RoadNetwork) NumIntersections() int { return len(n.intersections) }

func (n *RoadNetwork) NumSegments() int { return len(n.segments) }

// Intersections returns every intersection sorted by id.
func (n *RoadNetwork) Intersections() []Intersection {
	out := make([]Intersection, 0, len(n.intersections))
	for _, i := range n.intersections {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b Intersection) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Segments returns every segment sorted by origin, then destination.
func (n *RoadNetwork) Segments() []Segment {
	out := make([]Segment, 0, len(n.segments))
	for _, s := range n.segments {
		out = append(out, s)
	}
	slices.SortFunc(out, compareSegments)
	return out
}

// StreetSegments returns the segments carrying the given street name.
func (n *RoadNetwork) StreetSegments(name string) []Segment {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	out := []Segment{}
	for _, s := range n.segments {
		if strings.EqualFold(s.Name, name) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, compareSegments)
	return out
}

// Bounds returns the bounding box of all intersections.
// An empty network yields the zero bound.
func (n *RoadNetwork) Bounds() orb.Bound {
	var (
		b     orb.Bound
		first = true
	)
	for _, i := range n.intersections {
		if first {
			b = i.Location.Bound()
			first = false
			continue
		}
		b = b.Extend(i.Location)
	}
	return b
}

// Revision fingerprints the segments of the network. Any added, removed,
// re-weighted or renamed segment yields a different value.
func (n *RoadNetwork) Revision() string {
	h := xxhash.New()
	for _, s := range n.Segments() {
		_, _ = h.WriteString(s.Origin)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(s.Destination)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(strconv.FormatFloat(s.Length, 'g', -1, 64))
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(s.Name)
		_, _ = h.WriteString("\n")
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func compareSegments(a, b Segment) int {
	if c := strings.Compare(a.Origin, b.Origin); c != 0 {
		return c
	}
	return strings.Compare(a.Destination, b.Destination)
}
