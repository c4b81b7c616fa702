package cache

import (
	"encoding/json"
	"strings"

	"tour-planner-service/internal/domain"
)

// Cached form of a shortest path.
type pathEntry struct {
	Cost     float64        `json:"cost"`
	Segments []segmentEntry `json:"segments"`
}

type segmentEntry struct {
	Origin      string  `json:"o"`
	Destination string  `json:"d"`
	Length      float64 `json:"l"`
	Name        string  `json:"n,omitempty"`
}

func toEntries(segs []domain.Segment) []segmentEntry {
	out := make([]segmentEntry, 0, len(segs))
	for _, s := range segs {
		out = append(out, segmentEntry{Origin: s.Origin, Destination: s.Destination, Length: s.Length, Name: s.Name})
	}
	return out
}

func fromEntries(in []segmentEntry) []domain.Segment {
	out := make([]domain.Segment, 0, len(in))
	for _, s := range in {
		out = append(out, domain.Segment{Origin: s.Origin, Destination: s.Destination, Length: s.Length, Name: s.Name})
	}
	return out
}

func encodeSegments(segs []domain.Segment) ([]byte, error) {
	return json.Marshal(toEntries(segs))
}

func decodeSegments(data []byte) ([]domain.Segment, error) {
	var in []segmentEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	return fromEntries(in), nil
}

func encodePath(p domain.Path) ([]byte, error) {
	return json.Marshal(pathEntry{Cost: p.Cost, Segments: toEntries(p.Segments)})
}

func decodePath(origin, destination string, data []byte) (domain.Path, error) {
	var e pathEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return domain.Path{}, err
	}
	return domain.Path{Origin: origin, Destination: destination, Cost: e.Cost, Segments: fromEntries(e.Segments)}, nil
}

// uniqueIDs trims ids and drops blanks and repeats, keeping first occurrences.
func uniqueIDs(ids []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(ids))
	for _, d := range ids {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}
	return uniq
}
