package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealsteals/dealworker/internal/days"
	"mealsteals/dealworker/internal/deals"
	"mealsteals/dealworker/internal/venue"
	"mealsteals/dealworker/pkg/errors"
	"mealsteals/dealworker/services/queue"
)

type stubSearcher struct {
	result  *venue.SearchResult
	err     error
	address string
	radius  int
	filter  venue.SearchFilter
}

func (s *stubSearcher) Search(ctx context.Context, address string, radiusMeters int, filter venue.SearchFilter) (*venue.SearchResult, error) {
	s.address, s.radius, s.filter = address, radiusMeters, filter
	return s.result, s.err
}

type fixture struct {
	server   *httptest.Server
	queue    *queue.MemoryQueue
	searcher *stubSearcher
}

func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	restaurants := venue.NewMemoryStore()
	require.NoError(t, restaurants.Save(ctx, venue.Restaurant{
		ID: "r-1", ExternalID: "g1", Name: "The Plough", URL: "https://plough.example",
		OpenHours: []string{"Open 24 hours"}, Timezone: "UTC",
	}))
	require.NoError(t, restaurants.Save(ctx, venue.Restaurant{ID: "r-2", ExternalID: "g2", Name: "No Site"}))

	dealStore := deals.NewMemoryStore()
	dealStore.Put(deals.Deal{
		ID: "d-1", RestaurantID: "r-1", Dish: "Rump Steak",
		Price: decimal.NewNullDecimal(decimal.RequireFromString("20.00")),
		Days:  days.Of(days.Tuesday), CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	dealStore.Put(deals.Deal{
		ID: "d-2", RestaurantID: "r-1", Dish: "Old", Days: days.All, IsDeleted: true,
	})

	f := &fixture{queue: queue.NewMemoryQueue(), searcher: &stubSearcher{}}
	srv := NewServer(restaurants, dealStore, f.searcher, f.queue, 1500)
	f.server = httptest.NewServer(srv.Router())
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, map[string]interface{}) {
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestGetRestaurant(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/restaurants/r-1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "The Plough", body["name"])
	assert.Equal(t, true, body["is_open_now"])

	resp, body = f.do(t, http.MethodGet, "/restaurants/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "restaurant not found", body["error"])
}

func TestRestaurantDeals(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/restaurants/r-1/deals", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	list := body["deals"].([]interface{})
	require.Len(t, list, 1)
	deal := list[0].(map[string]interface{})
	assert.Equal(t, "Rump Steak", deal["dish"])
	assert.Equal(t, []interface{}{"tuesday"}, deal["day_of_week"])

	resp, _ = f.do(t, http.MethodGet, "/restaurants/nope/deals", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDealsByDay(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/deals?day=Tue", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tuesday", body["day"])
	assert.Len(t, body["deals"], 1)

	resp, body = f.do(t, http.MethodGet, "/deals?day=monday", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["deals"], 0)

	resp, _ = f.do(t, http.MethodGet, "/deals?day=someday", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScrapeEnqueues(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/restaurants/r-1/scrape", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "r-1", body["restaurant_id"])
	jobs := f.queue.Pending()
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://plough.example", jobs[0].URL)

	resp, _ = f.do(t, http.MethodPost, "/restaurants/r-2/scrape", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/restaurants/nope/scrape", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Len(t, f.queue.Pending(), 1)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.searcher.result = &venue.SearchResult{
		Restaurants: []venue.Restaurant{{ID: "r-9", Name: "Found"}},
		Created:     1,
	}

	resp, body := f.do(t, http.MethodPost, "/search", `{"address":"South Brisbane","suburb":"brisbane","is_open_now":true,"limit":5}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["restaurants_created"])
	assert.Equal(t, "South Brisbane", f.searcher.address)
	assert.Equal(t, 1500, f.searcher.radius)
	require.NotNil(t, f.searcher.filter.IsOpenNow)
	assert.True(t, *f.searcher.filter.IsOpenNow)
	assert.Equal(t, 5, f.searcher.filter.Limit)

	resp, _ = f.do(t, http.MethodPost, "/search", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.searcher.err = errors.NewValidation("", "address is required")
	resp, _ = f.do(t, http.MethodPost, "/search", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.searcher.err = stderrors.New("places quota exceeded")
	resp, body = f.do(t, http.MethodPost, "/search", `{"address":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "processing error", body["error"])
}
