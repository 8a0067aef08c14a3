package worker

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealsteals/dealworker/internal/pipeline"
	"mealsteals/dealworker/internal/venue"
	"mealsteals/dealworker/pkg/errors"
	"mealsteals/dealworker/services/cache"
	"mealsteals/dealworker/services/publisher"
	"mealsteals/dealworker/services/queue"
)

// MockScraper records the venues it was asked to scrape
type MockScraper struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (m *MockScraper) RunScrape(ctx context.Context, restaurantID, url string) (*pipeline.ScrapeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, restaurantID)
	if err := m.fail[restaurantID]; err != nil {
		return nil, err
	}
	return &pipeline.ScrapeResult{RestaurantID: restaurantID}, nil
}

func (m *MockScraper) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockPublisher counts stream trims
type MockPublisher struct {
	publisher.Nop
	trims int
}

func (m *MockPublisher) TrimStreams() error {
	m.trims++
	return nil
}

func newTestWorker(q queue.Queue, s Scraper, store venue.Store, pub publisher.Publisher) *Worker {
	w := NewWorker(context.Background(), q, s, store, pub, nil, time.Hour)
	w.pollTimeout = 10 * time.Millisecond
	return w
}

func TestProcessNextAcksFailures(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemoryQueue()
	scraper := &MockScraper{fail: map[string]error{
		"r-2": errors.NewNavigation("r-2", "entry page unreachable", stderrors.New("timeout")),
	}}
	w := newTestWorker(q, scraper, nil, nil)

	id1, _ := q.Enqueue(ctx, queue.Job{RestaurantID: "r-1", URL: "https://one.example"})
	id2, _ := q.Enqueue(ctx, queue.Job{RestaurantID: "r-2", URL: "https://two.example"})
	id3, _ := q.Enqueue(ctx, queue.Job{RestaurantID: "r-3", JobType: "menu_sync"})

	w.processNext()
	w.processNext()
	w.processNext()
	w.processNext() // empty queue times out

	assert.Equal(t, []string{"r-1", "r-2"}, scraper.Calls())
	assert.Equal(t, []string{id1, id2, id3}, q.Acked())
}

func TestScheduleIfDue(t *testing.T) {
	ctx := context.Background()
	store := venue.NewMemoryStore()
	base := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, venue.Restaurant{ID: "r-1", URL: "https://one.example", CreatedAt: base}))
	require.NoError(t, store.Save(ctx, venue.Restaurant{ID: "r-2", CreatedAt: base.Add(time.Second)}))

	q := queue.NewMemoryQueue()
	pub := &MockPublisher{}
	w := newTestWorker(q, &MockScraper{}, store, pub)
	now := base
	w.now = func() time.Time { return now }

	w.scheduleIfDue()
	jobs := q.Pending()
	require.Len(t, jobs, 1)
	assert.Equal(t, "r-1", jobs[0].RestaurantID)
	assert.Equal(t, queue.JobTypeDealScraping, jobs[0].JobType)
	assert.Equal(t, 1, pub.trims)

	now = now.Add(30 * time.Minute)
	w.scheduleIfDue()
	assert.Len(t, q.Pending(), 1)

	now = now.Add(time.Hour)
	w.scheduleIfDue()
	assert.Len(t, q.Pending(), 2)
	assert.Equal(t, 2, pub.trims)
}

func TestScheduleIfDueOncePerFleet(t *testing.T) {
	ctx := context.Background()
	store := venue.NewMemoryStore()
	require.NoError(t, store.Save(ctx, venue.Restaurant{ID: "r-1", URL: "https://one.example"}))

	q := queue.NewMemoryQueue()
	shared := cache.NewMemoryCache()
	first := NewWorker(ctx, q, &MockScraper{}, store, nil, shared, time.Hour)
	second := NewWorker(ctx, q, &MockScraper{}, store, nil, shared, time.Hour)

	first.scheduleIfDue()
	second.scheduleIfDue()
	assert.Len(t, q.Pending(), 1)

	// a worker on its own cache is not gated
	alone := NewWorker(ctx, q, &MockScraper{}, store, nil, cache.NewMemoryCache(), time.Hour)
	alone.scheduleIfDue()
	assert.Len(t, q.Pending(), 2)
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := queue.NewMemoryQueue()
	scraper := &MockScraper{}
	w := NewWorker(ctx, q, scraper, nil, nil, nil, time.Hour)
	w.pollTimeout = 10 * time.Millisecond

	_, err := q.Enqueue(ctx, queue.Job{RestaurantID: "r-1", URL: "https://one.example"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		w.Start()
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(scraper.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
