package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/platform/db"
	"tour-planner-service/internal/ports"
	"tour-planner-service/internal/testutil"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, InitSchema(sqlDB))
	return sqlDB
}

const seedJSON = `{
  "networks": [{
    "id": "mini",
    "intersections": [
      {"id": "a", "lat": 45.75, "lon": 4.85},
      {"id": "b", "lat": 45.76, "lon": 4.86},
      {"id": "c", "lat": 45.77, "lon": 4.84}
    ],
    "segments": [
      {"origin": "a", "destination": "b", "length": 120.5, "name": "Rue A"},
      {"origin": "b", "destination": "c", "length": 80, "name": "Rue B"},
      {"origin": "c", "destination": "a", "length": 60, "name": "Rue A"}
    ]
  }],
  "request_sets": [{
    "id": "rs1",
    "network_id": "mini",
    "depot": "a",
    "departure": "08:00:00",
    "requests": [{"pickup": "b", "delivery": "c", "pickup_duration": 60, "delivery_duration": 30}]
  }]
}`

func TestInitSchema_Idempotent(t *testing.T) {
	sqlDB := openTestDB(t)
	require.NoError(t, InitSchema(sqlDB))
	require.Error(t, InitSchema(nil))
}

func TestSeedFromJSON_RoundTrip(t *testing.T) {
	sqlDB := openTestDB(t)
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))

	require.NoError(t, SeedFromJSON(sqlDB, db.SQLite, path))
	// reseeding replaces rows
	require.NoError(t, SeedFromJSON(sqlDB, db.SQLite, path))

	ctx := context.Background()
	networks := NewSQLRoadNetworkRepository(sqlDB, db.SQLite)

	infos, err := networks.ListNetworks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ports.NetworkInfo{{ID: "mini", NumIntersections: 3, NumSegments: 3}}, infos)

	n, err := networks.GetNetwork(ctx, "mini")
	require.NoError(t, err)
	seg, ok := n.Segment("a", "b")
	require.True(t, ok)
	assert.Equal(t, 120.5, seg.Length)
	assert.Equal(t, "Rue A", seg.Name)
	assert.Len(t, n.StreetSegments("rue a"), 2)
	assert.Equal(t, []string{"b"}, n.Adjacent("a"))

	i, ok := n.Intersection("c")
	require.True(t, ok)
	assert.Equal(t, 45.77, i.Lat())
	assert.Equal(t, 4.84, i.Lon())

	rs, err := NewSQLRequestSetRepository(sqlDB, db.SQLite).GetRequestSet(ctx, "rs1")
	require.NoError(t, err)
	assert.Equal(t, "a", rs.DepotID)
	assert.Equal(t, "mini", rs.NetworkID)
	assert.Equal(t, "08:00:00", domain.FormatClock(rs.DepartureTime))
	require.Len(t, rs.Requests, 1)
	assert.Equal(t, domain.Request{PickupID: "b", DeliveryID: "c", PickupDurationSeconds: 60, DeliveryDurationSeconds: 30}, *rs.Requests[0])
}

func TestSeed_RejectsInvalidData(t *testing.T) {
	sqlDB := openTestDB(t)
	ctx := context.Background()

	bad := SeedFile{Networks: []NetworkSeed{{
		ID:            "broken",
		Intersections: []IntersectionSeed{{ID: "a"}},
		Segments:      []SegmentSeed{{Origin: "a", Destination: "z", Length: 1}},
	}}}
	err := Seed(ctx, sqlDB, db.SQLite, bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownIntersection))

	badRequests := SeedFile{RequestSets: []RequestSetSeed{{
		ID: "rs", Depot: "a", Departure: "8h",
	}}}
	require.Error(t, Seed(ctx, sqlDB, db.SQLite, badRequests))
}

func TestSQLRepositories_NotFound(t *testing.T) {
	sqlDB := openTestDB(t)
	ctx := context.Background()

	_, err := NewSQLRoadNetworkRepository(sqlDB, db.SQLite).GetNetwork(ctx, "nope")
	assert.True(t, errors.Is(err, ports.ErrNotFound))

	_, err = NewSQLRequestSetRepository(sqlDB, db.SQLite).GetRequestSet(ctx, "nope")
	assert.True(t, errors.Is(err, ports.ErrNotFound))

	_, err = NewSQLTourRepository(sqlDB, db.SQLite).GetTour(ctx, "nope")
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestSQLRoadNetworkRepository_SaveDropsCachedPaths(t *testing.T) {
	sqlDB := openTestDB(t)
	ctx := context.Background()
	repo := NewSQLRoadNetworkRepository(sqlDB, db.SQLite)

	require.NoError(t, repo.SaveNetwork(ctx, testutil.SevenNodeNetwork()))
	for _, network := range []string{"seven", "other"} {
		_, err := sqlDB.ExecContext(ctx, `
		INSERT INTO path_cache (network_id, revision, origin, destination, cost, segments)
		VALUES (?, 'r1', '1', '2', 3, '[]');
		`, network)
		require.NoError(t, err)
	}

	require.NoError(t, repo.SaveNetwork(ctx, testutil.SevenNodeNetwork()))

	count := func(network string) int {
		var n int
		require.NoError(t, sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM path_cache WHERE network_id = ?`, network).Scan(&n))
		return n
	}
	assert.Equal(t, 0, count("seven"))
	assert.Equal(t, 1, count("other"))
}

func samplePlan(t *testing.T) *domain.TourPlan {
	t.Helper()
	rs := testutil.TwoRequests()
	tour := &domain.Tour{
		Order: []string{"1", "2"},
		Cost:  4,
		Legs: []domain.Path{
			{Origin: "1", Destination: "2", Cost: 3, Segments: []domain.Segment{{Origin: "1", Destination: "2", Length: 3, Name: "12"}}},
			{Origin: "2", Destination: "1", Cost: 1, Segments: []domain.Segment{{Origin: "2", Destination: "1", Length: 1, Name: "21"}}},
		},
	}
	at := rs.DepartureTime.Add(time.Minute)
	rs.Requests[0].PickupAt = &at
	return &domain.TourPlan{
		ID:                   "t1",
		NetworkID:            "seven",
		Algorithm:            "branch-and-bound",
		Tour:                 tour,
		Requests:             rs,
		SpeedMetersPerSecond: 4.5,
		ComputedAt:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Elapsed:              1500 * time.Millisecond,
	}
}

func TestSQLTourRepository_RoundTrip(t *testing.T) {
	sqlDB := openTestDB(t)
	ctx := context.Background()
	repo := NewSQLTourRepository(sqlDB, db.SQLite)

	plan := samplePlan(t)
	require.NoError(t, repo.SaveTour(ctx, plan))
	plan.Algorithm = "simulated-annealing"
	require.NoError(t, repo.SaveTour(ctx, plan))

	got, err := repo.GetTour(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "simulated-annealing", got.Algorithm)
	assert.Equal(t, "seven", got.NetworkID)
	assert.True(t, plan.ComputedAt.Equal(got.ComputedAt))
	assert.Equal(t, plan.Elapsed, got.Elapsed)
	assert.Equal(t, plan.Tour.Order, got.Tour.Order)
	assert.Equal(t, plan.Tour.Legs, got.Tour.Legs)
	assert.Equal(t, 4.0, got.Tour.Cost)
	require.Len(t, got.Requests.Requests, 2)
	require.NotNil(t, got.Requests.Requests[0].PickupAt)
	assert.True(t, plan.Requests.Requests[0].PickupAt.Equal(*got.Requests.Requests[0].PickupAt))
	assert.Nil(t, got.Requests.Requests[1].PickupAt)
	assert.Equal(t, "1", got.Requests.DepotID)

	require.Error(t, repo.SaveTour(ctx, &domain.TourPlan{}))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.AddNetwork(testutil.SevenNodeNetwork())
	rs := testutil.TwoRequests()
	rs.ID = "rs"
	m.AddRequestSet(rs)

	infos, err := m.ListNetworks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ports.NetworkInfo{{ID: "seven", NumIntersections: 7, NumSegments: 19}}, infos)

	got, err := m.GetRequestSet(ctx, "rs")
	require.NoError(t, err)
	got.Remove("2", "4")
	again, _ := m.GetRequestSet(ctx, "rs")
	assert.Len(t, again.Requests, 2, "stored request set must not be mutated through a copy")

	plan := samplePlan(t)
	require.NoError(t, m.SaveTour(ctx, plan))
	p, err := m.GetTour(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, plan.Tour, p.Tour)

	_, err = m.GetTour(ctx, "missing")
	assert.True(t, errors.Is(err, ports.ErrNotFound))
	_, err = m.GetNetwork(ctx, "missing")
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}
