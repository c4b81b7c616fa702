package dto

type NetworkSummary struct {
	ID            string `json:"id"`
	Intersections int    `json:"intersections"`
	Segments      int    `json:"segments"`
}

type ListNetworksResponse struct {
	Networks []NetworkSummary `json:"networks"`
}

type BoundsResponse struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

type NetworkResponse struct {
	NetworkSummary
	Bounds BoundsResponse `json:"bounds"`
}

type SegmentResponse struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Length      float64 `json:"length"`
	Name        string  `json:"name,omitempty"`
}

type StreetResponse struct {
	Name     string            `json:"name"`
	Length   float64           `json:"length"`
	Segments []SegmentResponse `json:"segments"`
}
