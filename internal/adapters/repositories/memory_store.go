package repositories

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/ports"
)

// MemoryStore implements every repository port in process memory.
// It backs tests and local runs without a database.
type MemoryStore struct {
	mu          sync.Mutex
	networks    map[string]*domain.RoadNetwork
	requestSets map[string]*domain.RequestSet
	tours       map[string]*domain.TourPlan
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		networks:    map[string]*domain.RoadNetwork{},
		requestSets: map[string]*domain.RequestSet{},
		tours:       map[string]*domain.TourPlan{},
	}
}

// AddNetwork stores n. Networks are treated as read-only once added.
func (m *MemoryStore) AddNetwork(n *domain.RoadNetwork) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.networks[n.ID] = n
}

func (m *MemoryStore) AddRequestSet(rs *domain.RequestSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestSets[rs.ID] = rs.Clone()
}

func (m *MemoryStore) ListNetworks(ctx context.Context) ([]ports.NetworkInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ports.NetworkInfo, 0, len(m.networks))
	for _, n := range m.networks {
		out = append(out, ports.NetworkInfo{ID: n.ID, NumIntersections: n.NumIntersections(), NumSegments: n.NumSegments()})
	}
	slices.SortFunc(out, func(a, b ports.NetworkInfo) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryStore) GetNetwork(ctx context.Context, id string) (*domain.RoadNetwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.networks[id]
	if !ok {
		return nil, fmt.Errorf("get network %q: %w", id, ports.ErrNotFound)
	}
	return n, nil
}

func (m *MemoryStore) GetRequestSet(ctx context.Context, id string) (*domain.RequestSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rs, ok := m.requestSets[id]
	if !ok {
		return nil, fmt.Errorf("get request set %q: %w", id, ports.ErrNotFound)
	}
	return rs.Clone(), nil
}

func (m *MemoryStore) SaveTour(ctx context.Context, plan *domain.TourPlan) error {
	if plan == nil || plan.ID == "" {
		return fmt.Errorf("save tour: plan id must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tours[plan.ID] = copyPlan(plan)
	return nil
}

func (m *MemoryStore) GetTour(ctx context.Context, id string) (*domain.TourPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.tours[id]
	if !ok {
		return nil, fmt.Errorf("get tour %q: %w", id, ports.ErrNotFound)
	}
	return copyPlan(p), nil
}

// copyPlan detaches the mutable request schedule; the tour itself is immutable.
func copyPlan(p *domain.TourPlan) *domain.TourPlan {
	out := *p
	if p.Requests != nil {
		out.Requests = p.Requests.Clone()
	}
	return &out
}
