package deals

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mealsteals/dealworker/internal/days"
)

// Candidate is an extracted deal before it is accepted into storage.
// An empty Dish means the model found none; such candidates are dropped.
type Candidate struct {
	Dish  string              `json:"dish"`
	Price decimal.NullDecimal `json:"price"`
	Days  days.Set            `json:"day_of_week"`
	Notes string              `json:"notes,omitempty"`
}

// Deal is a persisted promotional offer owned by one restaurant.
// Dish and Days identify the deal and never change after creation.
type Deal struct {
	ID           string              `json:"id"`
	RestaurantID string              `json:"restaurant_id"`
	Dish         string              `json:"dish"`
	Price        decimal.NullDecimal `json:"price"`
	Days         days.Set            `json:"day_of_week"`
	Notes        string              `json:"notes,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    *time.Time          `json:"updated_at"`
	IsDeleted    bool                `json:"is_deleted"`
	DeletedAt    *time.Time          `json:"deleted_at"`
}

// Key is the natural matching key: lowercased trimmed dish plus day set
type Key struct {
	Dish string
	Days days.Set
}

func keyOf(dish string, set days.Set) Key {
	return Key{Dish: strings.ToLower(strings.TrimSpace(dish)), Days: set}
}

// Key returns the candidate's matching key
func (c Candidate) Key() Key { return keyOf(c.Dish, c.Days) }

// Key returns the deal's matching key
func (d Deal) Key() Key { return keyOf(d.Dish, d.Days) }

func pricesEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}
