package handlers

import (
	"net/http"
	"strings"

	"tour-planner-service/internal/api/dto"
	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/ports"
)

// NetworkHandler exposes read-only road network endpoints.
type NetworkHandler struct {
	Repo ports.RoadNetworkRepository
}

func (h *NetworkHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	infos, err := h.Repo.ListNetworks(r.Context())
	if err != nil {
		writeServiceError(w, r, "list networks", err)
		return
	}

	res := dto.ListNetworksResponse{Networks: make([]dto.NetworkSummary, 0, len(infos))}
	for _, n := range infos {
		res.Networks = append(res.Networks, dto.NetworkSummary{
			ID:            n.ID,
			Intersections: n.NumIntersections,
			Segments:      n.NumSegments,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns a network summary with its bounding box.
func (h *NetworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	n, err := h.Repo.GetNetwork(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "get network", err)
		return
	}

	b := n.Bounds()
	writeJSON(w, r, http.StatusOK, dto.NetworkResponse{
		NetworkSummary: dto.NetworkSummary{
			ID:            n.ID,
			Intersections: n.NumIntersections(),
			Segments:      n.NumSegments(),
		},
		Bounds: dto.BoundsResponse{
			MinLat: b.Min.Lat(),
			MinLon: b.Min.Lon(),
			MaxLat: b.Max.Lat(),
			MaxLon: b.Max.Lon(),
		},
	})
}

// Streets returns every segment of the street given by the name query parameter.
func (h *NetworkHandler) Streets(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	n, err := h.Repo.GetNetwork(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "get street", err)
		return
	}

	segs := n.StreetSegments(name)
	if len(segs) == 0 {
		writeError(w, r, http.StatusNotFound, "street not found")
		return
	}

	res := dto.StreetResponse{Name: segs[0].Name, Segments: segmentResponses(segs)}
	for _, s := range segs {
		res.Length += s.Length
	}
	writeJSON(w, r, http.StatusOK, res)
}

func segmentResponses(segs []domain.Segment) []dto.SegmentResponse {
	out := make([]dto.SegmentResponse, 0, len(segs))
	for _, s := range segs {
		out = append(out, dto.SegmentResponse{Origin: s.Origin, Destination: s.Destination, Length: s.Length, Name: s.Name})
	}
	return out
}
