package deals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealsteals/dealworker/internal/days"
	"mealsteals/dealworker/pkg/errors"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put(storedDeal("a", "Wings", "1", days.Of(days.Thursday)))
	store.Put(storedDeal("b", "Roast", "20", days.Of(days.Sunday, days.Thursday)))
	gone := storedDeal("c", "Parma", "18", days.Of(days.Thursday))
	gone.IsDeleted = true
	store.Put(gone)

	thursday, err := store.ListActiveByDay(ctx, days.Thursday)
	require.NoError(t, err)
	assert.Len(t, thursday, 2)

	d, err := store.GetByID(ctx, "c")
	require.NoError(t, err)
	assert.True(t, d.IsDeleted)

	_, err = store.GetByID(ctx, "zzz")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
