package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"tour-planner-service/internal/adapters/repositories"
	"tour-planner-service/internal/api/dto"
	"tour-planner-service/internal/config"
	"tour-planner-service/internal/testutil"
)

func newTestServer(t *testing.T, limit rate.Limit, burst int) *httptest.Server {
	t.Helper()
	store := repositories.NewMemoryStore()
	store.AddNetwork(testutil.SevenNodeNetwork())
	rs := testutil.TwoRequests()
	rs.ID = "rs"
	rs.NetworkID = "seven"
	store.AddRequestSet(rs)

	solver := config.DefaultSolver()
	solver.TimeBudgetMS = 5000

	srv := httptest.NewServer(NewRouter(Deps{
		Networks:    store,
		RequestSets: store,
		Tours:       store,
		Solver:      solver,
		PlanRate:    limit,
		PlanBurst:   burst,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 0, 0)

	res := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	res = do(t, http.MethodPost, srv.URL+"/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, http.MethodGet, res.Header.Get("Allow"))
}

func TestNetworks(t *testing.T) {
	srv := newTestServer(t, 0, 0)

	list := decode[dto.ListNetworksResponse](t, do(t, http.MethodGet, srv.URL+"/networks", ""))
	assert.Equal(t, []dto.NetworkSummary{{ID: "seven", Intersections: 7, Segments: 19}}, list.Networks)

	res := do(t, http.MethodGet, srv.URL+"/networks/seven", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	n := decode[dto.NetworkResponse](t, res)
	assert.InDelta(t, 45.70, n.Bounds.MinLat, 1e-9)
	assert.InDelta(t, 45.76, n.Bounds.MaxLat, 1e-9)
	assert.InDelta(t, 4.80, n.Bounds.MinLon, 1e-9)
	assert.InDelta(t, 4.86, n.Bounds.MaxLon, 1e-9)

	res = do(t, http.MethodGet, srv.URL+"/networks/mars", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestStreets(t *testing.T) {
	srv := newTestServer(t, 0, 0)

	res := do(t, http.MethodGet, srv.URL+"/networks/seven/streets?name=34", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	street := decode[dto.StreetResponse](t, res)
	assert.Equal(t, "34", street.Name)
	assert.Equal(t, 1.5, street.Length)
	require.Len(t, street.Segments, 1)
	assert.Equal(t, "3", street.Segments[0].Origin)

	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodGet, srv.URL+"/networks/seven/streets", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/networks/seven/streets?name=nowhere", "").StatusCode)
}

func TestPlanGetAndEditTour(t *testing.T) {
	srv := newTestServer(t, 0, 0)

	res := do(t, http.MethodPost, srv.URL+"/tours", `{"request_set_id":"rs"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	tour := decode[dto.TourResponse](t, res)

	assert.Equal(t, []string{"1", "2", "7", "6", "4"}, tour.Order)
	assert.Equal(t, 21.0, tour.Cost)
	assert.Equal(t, "branch-and-bound", tour.Algorithm)
	assert.Equal(t, "08:00:00", tour.Departure)
	// Legs 2->7 and 4->1 pass back through request points, which are served again.
	assert.Equal(t, "08:00:32", tour.Finish)
	assert.InDelta(t, 15.0, tour.SpeedKMH, 1e-9)
	require.Len(t, tour.Legs, 5)
	assert.Equal(t, []dto.ScheduledRequestResponse{
		{Pickup: "7", Delivery: "6", PickupDuration: 5, DeliveryDuration: 4, PickupAt: "08:00:13", DeliveryAt: "08:00:19"},
		{Pickup: "2", Delivery: "4", PickupDuration: 5, DeliveryDuration: 4, PickupAt: "08:00:27", DeliveryAt: "08:00:23"},
	}, tour.Requests)

	res = do(t, http.MethodGet, srv.URL+"/tours/"+tour.ID, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	got := decode[dto.TourResponse](t, res)
	assert.Equal(t, tour.Order, got.Order)

	res = do(t, http.MethodDelete, srv.URL+"/tours/"+tour.ID+"/requests?pickup=7&delivery=6", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	edited := decode[dto.TourResponse](t, res)
	assert.Equal(t, []string{"1", "2", "4"}, edited.Order)
	assert.Equal(t, 9.0, edited.Cost)
	require.Len(t, edited.Requests, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodDelete, srv.URL+"/tours/"+tour.ID+"/requests?pickup=7", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodDelete, srv.URL+"/tours/"+tour.ID+"/requests?pickup=7&delivery=6", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/tours/unknown", "").StatusCode)
}

func TestPlanTour_InlineSimulatedAnnealing(t *testing.T) {
	srv := newTestServer(t, 0, 0)

	body := `{
		"network_id": "seven",
		"depot": "1",
		"departure": "09:30",
		"requests": [{"pickup": "2", "delivery": "4"}, {"pickup": "7", "delivery": "6"}],
		"algorithm": "simulated-annealing",
		"time_budget_ms": 500,
		"speed_kmh": 36
	}`
	res := do(t, http.MethodPost, srv.URL+"/tours", body)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	tour := decode[dto.TourResponse](t, res)

	assert.Equal(t, "simulated-annealing", tour.Algorithm)
	assert.Equal(t, "09:30:00", tour.Departure)
	assert.InDelta(t, 36.0, tour.SpeedKMH, 1e-9)
	assert.LessOrEqual(t, tour.Cost, 21.0*1.1)
}

func TestPlanTour_BadRequests(t *testing.T) {
	srv := newTestServer(t, 0, 0)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"unknown field", `{"request_set_id":"rs","trucks":3}`, http.StatusBadRequest},
		{"two objects", `{"request_set_id":"rs"}{}`, http.StatusBadRequest},
		{"negative budget", `{"request_set_id":"rs","time_budget_ms":-5}`, http.StatusBadRequest},
		{"budget above max", `{"request_set_id":"rs","time_budget_ms":36000000}`, http.StatusBadRequest},
		{"negative speed", `{"request_set_id":"rs","speed_kmh":-5}`, http.StatusBadRequest},
		{"no depot", `{"network_id":"seven"}`, http.StatusBadRequest},
		{"bad departure", `{"network_id":"seven","depot":"1","departure":"soon"}`, http.StatusBadRequest},
		{"unknown algorithm", `{"request_set_id":"rs","algorithm":"genetic"}`, http.StatusBadRequest},
		{"unknown request set", `{"request_set_id":"nope"}`, http.StatusNotFound},
		{"unknown point", `{"network_id":"seven","depot":"1","departure":"08:00","requests":[{"pickup":"2","delivery":"99"}]}`, http.StatusUnprocessableEntity},
		{"delivery at depot", `{"network_id":"seven","depot":"1","departure":"08:00","requests":[{"pickup":"2","delivery":"1"}]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, http.MethodPost, srv.URL+"/tours", tt.body)
			assert.Equal(t, tt.want, res.StatusCode)
		})
	}

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, http.MethodGet, srv.URL+"/tours", "").StatusCode)
}

func TestPlanTour_RateLimited(t *testing.T) {
	srv := newTestServer(t, rate.Every(time.Hour), 1)

	res := do(t, http.MethodPost, srv.URL+"/tours", `{"request_set_id":"rs"}`)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	res = do(t, http.MethodPost, srv.URL+"/tours", `{"request_set_id":"rs"}`)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "1", res.Header.Get("Retry-After"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, 0, 0)
	do(t, http.MethodGet, srv.URL+"/health", "")

	res := do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="/health",status="200"}`)
}
