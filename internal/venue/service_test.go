package venue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealsteals/dealworker/pkg/errors"
)

type fakePlaces struct {
	places []Place
	err    error
}

func (f *fakePlaces) FindVenues(ctx context.Context, address string, radiusMeters int) ([]Place, error) {
	return f.places, f.err
}

type fakeTimezones struct {
	zone  string
	calls int
}

func (f *fakeTimezones) TimezoneAt(latitude, longitude float64) string {
	f.calls++
	return f.zone
}

func newTestService(places *fakePlaces, tz *fakeTimezones) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	svc := NewService(store, places, tz)
	svc.Now = func() time.Time { return at(19, 2, 0) } // 12:00 Monday in Brisbane
	n := 0
	svc.NewID = func() string {
		n++
		return fmt.Sprintf("r-%d", n)
	}
	return svc, store
}

func pub(id, name, addr string, hours ...string) Place {
	return Place{
		ExternalID:    id,
		Name:          name,
		URL:           "https://" + id + ".example",
		Types:         []string{"bar", "restaurant"},
		OpenHours:     hours,
		StreetAddress: addr,
		Latitude:      -27.47,
		Longitude:     153.02,
	}
}

func TestUpsertFromPlaceKeepsTimezone(t *testing.T) {
	tz := &fakeTimezones{zone: "Australia/Brisbane"}
	svc, store := newTestService(&fakePlaces{}, tz)
	ctx := context.Background()

	p := pub("g1", "The Plough", "29 Stanley St, South Brisbane QLD 4101, Australia")
	r, created, err := svc.UpsertFromPlace(ctx, p)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "r-1", r.ID)
	assert.Equal(t, "Australia/Brisbane", r.Timezone)
	assert.Equal(t, "South Brisbane", r.Suburb)
	assert.Equal(t, "4101", r.Postcode)
	assert.Nil(t, r.UpdatedAt)

	tz.zone = "Australia/Sydney"
	p.Name = "The Plough Inn"
	r, created, err = svc.UpsertFromPlace(ctx, p)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "r-1", r.ID)
	assert.Equal(t, "The Plough Inn", r.Name)
	assert.Equal(t, "Australia/Brisbane", r.Timezone)
	assert.NotNil(t, r.UpdatedAt)
	assert.Equal(t, 1, tz.calls)

	stored, err := store.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "The Plough Inn", stored.Name)
}

func TestSearchFilters(t *testing.T) {
	places := &fakePlaces{places: []Place{
		pub("g1", "Open Pub", "1 A St, South Brisbane QLD 4101, Australia", "Monday: 11:00 AM – 10:00 PM"),
		pub("g2", "Closed Pub", "2 B St, South Brisbane QLD 4101, Australia", "Monday: Closed"),
		pub("g3", "Valley Pub", "3 C St, Fortitude Valley QLD 4006, Australia", "Monday: 11:00 AM – 10:00 PM"),
	}}
	svc, _ := newTestService(places, &fakeTimezones{zone: "Australia/Brisbane"})
	ctx := context.Background()

	res, err := svc.Search(ctx, "South Brisbane", 1500, SearchFilter{Suburb: "brisbane"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 0, res.Updated)
	require.Len(t, res.Restaurants, 2)
	assert.Equal(t, "Open Pub", res.Restaurants[0].Name)
	assert.Equal(t, "Closed Pub", res.Restaurants[1].Name)

	open := true
	res, err = svc.Search(ctx, "South Brisbane", 1500, SearchFilter{IsOpenNow: &open})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 3, res.Updated)
	require.Len(t, res.Restaurants, 2)
	assert.Equal(t, "Valley Pub", res.Restaurants[1].Name)

	res, err = svc.Search(ctx, "South Brisbane", 1500, SearchFilter{Postcode: "4006"})
	require.NoError(t, err)
	require.Len(t, res.Restaurants, 1)
	assert.Equal(t, "Valley Pub", res.Restaurants[0].Name)

	res, err = svc.Search(ctx, "South Brisbane", 1500, SearchFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Restaurants, 1)
	assert.Equal(t, 3, res.Updated)
}

func TestSearchErrors(t *testing.T) {
	svc, _ := newTestService(&fakePlaces{err: errors.NewNavigation("", "geocode", nil)}, nil)

	_, err := svc.Search(context.Background(), "", 1500, SearchFilter{})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = svc.Search(context.Background(), "Brisbane", 1500, SearchFilter{})
	assert.Equal(t, errors.ErrorTypeNavigation, errors.TypeOf(err))
}

func TestMemoryStoreList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := at(1, 0, 0)
	require.NoError(t, store.Save(ctx, Restaurant{ID: "a", ExternalID: "ga", URL: "https://a", Suburb: "Fitzroy", CreatedAt: base}))
	require.NoError(t, store.Save(ctx, Restaurant{ID: "b", ExternalID: "gb", Suburb: "Carlton", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Save(ctx, Restaurant{ID: "c", ExternalID: "gc", URL: "https://c", CreatedAt: base.Add(2 * time.Minute), IsDeleted: true}))

	all, err := store.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	withURL, err := store.List(ctx, ListFilter{WithURL: true})
	require.NoError(t, err)
	require.Len(t, withURL, 1)
	assert.Equal(t, "a", withURL[0].ID)

	carlton, err := store.List(ctx, ListFilter{Suburb: "CARL"})
	require.NoError(t, err)
	require.Len(t, carlton, 1)
	assert.Equal(t, "b", carlton[0].ID)

	_, err = store.GetByID(ctx, "c")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = store.GetByExternalID(ctx, "zz")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
