package venue

import (
	"context"
	"sort"
	"strings"
	"sync"

	"mealsteals/dealworker/pkg/errors"
)

// MemoryStore keeps restaurants in process
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]Restaurant
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Restaurant)}
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[id]
	if !ok || r.IsDeleted {
		return nil, errors.NewNotFound(id, "restaurant not found")
	}
	return &r, nil
}

func (m *MemoryStore) GetByExternalID(ctx context.Context, externalID string) (*Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rows {
		if r.ExternalID == externalID && !r.IsDeleted {
			return &r, nil
		}
	}
	return nil, errors.NewNotFound("", "restaurant "+externalID+" not found")
}

func (m *MemoryStore) Save(ctx context.Context, r Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID] = r
	return nil
}

func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Restaurant
	for _, r := range m.rows {
		if r.IsDeleted || !filter.matches(r) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// matches applies suburb and postcode only when the venue has a value for them
func (f ListFilter) matches(r Restaurant) bool {
	if f.Suburb != "" && r.Suburb != "" &&
		!strings.Contains(strings.ToLower(r.Suburb), strings.ToLower(f.Suburb)) {
		return false
	}
	if f.Postcode != "" && r.Postcode != "" && f.Postcode != r.Postcode {
		return false
	}
	if f.WithURL && r.URL == "" {
		return false
	}
	return true
}
