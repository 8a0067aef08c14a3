package deals

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Plan is the outcome of one reconciliation pass for a restaurant
type Plan struct {
	RestaurantID string
	Created      []Deal
	Updated      []Deal
	Unchanged    []Deal
	Obsoleted    []Deal
}

// Writes is the number of rows the plan touches
func (p Plan) Writes() int {
	return len(p.Created) + len(p.Updated) + len(p.Obsoleted)
}

// Active returns every deal still advertised after the pass
func (p Plan) Active() []Deal {
	out := make([]Deal, 0, len(p.Created)+len(p.Updated)+len(p.Unchanged))
	out = append(out, p.Created...)
	out = append(out, p.Updated...)
	return append(out, p.Unchanged...)
}

// Reconciler diffs a fresh scrape against stored deals
type Reconciler struct {
	Now   func() time.Time
	NewID func() string
}

// NewReconciler creates a reconciler using the wall clock and random UUIDs
func NewReconciler() *Reconciler {
	return &Reconciler{Now: time.Now, NewID: uuid.NewString}
}

// Reconcile treats candidates as the full current list of deals for the
// restaurant. Unmatched candidates are created, matches with a different
// price or notes are updated, and active deals nobody matched are soft
// deleted. Inactive rows in existing are ignored. Repeated candidates with
// the same key collapse into the first one.
func (r *Reconciler) Reconcile(restaurantID string, candidates []Candidate, existing []Deal) Plan {
	now := r.Now().UTC()
	plan := Plan{RestaurantID: restaurantID}

	active := make([]Deal, 0, len(existing))
	for _, d := range existing {
		if !d.IsDeleted {
			active = append(active, d)
		}
	}

	seen := make(map[string]bool)
	used := make(map[Key]bool)
	for _, c := range candidates {
		if strings.TrimSpace(c.Dish) == "" || c.Days.IsEmpty() {
			continue
		}
		key := c.Key()
		if used[key] {
			continue
		}
		used[key] = true

		match, ok := findMatch(active, key, seen)
		if !ok {
			plan.Created = append(plan.Created, Deal{
				ID:           r.NewID(),
				RestaurantID: restaurantID,
				Dish:         strings.TrimSpace(c.Dish),
				Price:        c.Price,
				Days:         c.Days,
				Notes:        c.Notes,
				CreatedAt:    now,
			})
			continue
		}

		seen[match.ID] = true
		if pricesEqual(match.Price, c.Price) && match.Notes == c.Notes {
			plan.Unchanged = append(plan.Unchanged, match)
			continue
		}
		updated := match
		updated.Price = c.Price
		updated.Notes = c.Notes
		updated.UpdatedAt = &now
		plan.Updated = append(plan.Updated, updated)
	}

	for _, d := range active {
		if seen[d.ID] {
			continue
		}
		obsolete := d
		obsolete.IsDeleted = true
		obsolete.DeletedAt = &now
		obsolete.UpdatedAt = &now
		plan.Obsoleted = append(plan.Obsoleted, obsolete)
	}

	return plan
}

func findMatch(active []Deal, key Key, seen map[string]bool) (Deal, bool) {
	for _, d := range active {
		if !seen[d.ID] && d.Key() == key {
			return d, true
		}
	}
	return Deal{}, false
}
