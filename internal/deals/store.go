package deals

import (
	"context"

	"mealsteals/dealworker/internal/days"
)

// Store persists deals. The reconciler is the only writer.
type Store interface {
	// ListActiveByRestaurant returns deals with is_deleted = false
	ListActiveByRestaurant(ctx context.Context, restaurantID string) ([]Deal, error)

	// ApplyPlan writes creates, updates and obsoletes as one batch
	ApplyPlan(ctx context.Context, plan Plan) error

	// ListActiveByDay returns active deals offered on day
	ListActiveByDay(ctx context.Context, day days.Day) ([]Deal, error)

	// GetByID returns a deal or a not_found error
	GetByID(ctx context.Context, id string) (*Deal, error)
}
