package deals

import (
	"context"
	"sort"
	"sync"

	"mealsteals/dealworker/internal/days"
	"mealsteals/dealworker/pkg/errors"
)

// MemoryStore keeps deals in process. Used for dry runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	deals map[string]Deal
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{deals: make(map[string]Deal)}
}

// Put stores d as-is
func (m *MemoryStore) Put(d Deal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deals[d.ID] = d
}

func (m *MemoryStore) ListActiveByRestaurant(ctx context.Context, restaurantID string) ([]Deal, error) {
	return m.filter(func(d Deal) bool { return d.RestaurantID == restaurantID }), nil
}

func (m *MemoryStore) ListActiveByDay(ctx context.Context, day days.Day) ([]Deal, error) {
	return m.filter(func(d Deal) bool { return d.Days.Has(day) }), nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*Deal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.deals[id]
	if !ok {
		return nil, errors.NewNotFound("", "deal "+id+" not found")
	}
	return &d, nil
}

func (m *MemoryStore) ApplyPlan(ctx context.Context, plan Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, batch := range [][]Deal{plan.Created, plan.Updated, plan.Obsoleted} {
		for _, d := range batch {
			m.deals[d.ID] = d
		}
	}
	return nil
}

func (m *MemoryStore) filter(keep func(Deal) bool) []Deal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Deal
	for _, d := range m.deals {
		if !d.IsDeleted && keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
