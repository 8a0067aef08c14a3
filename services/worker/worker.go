package worker

import (
	"context"
	stderrors "errors"
	"time"

	"mealsteals/dealworker/internal/pipeline"
	"mealsteals/dealworker/internal/venue"
	"mealsteals/dealworker/logger"
	"mealsteals/dealworker/pkg/errors"
	"mealsteals/dealworker/services/cache"
	"mealsteals/dealworker/services/publisher"
	"mealsteals/dealworker/services/queue"
)

// Scraper runs one venue's scrape
type Scraper interface {
	RunScrape(ctx context.Context, restaurantID, url string) (*pipeline.ScrapeResult, error)
}

// scheduleKey is held for one crawl interval by whichever worker schedules
// the rescrapes, so a fleet enqueues each venue once per interval
const scheduleKey = "rescrape:schedule"

// Worker pulls scrape jobs one at a time and periodically enqueues a
// rescrape of every venue with a website
type Worker struct {
	ctx           context.Context
	queue         queue.Queue
	scraper       Scraper
	restaurants   venue.Store
	publisher     publisher.Publisher
	cache         cache.CacheService
	logger        *logger.Logger
	crawlInterval time.Duration
	pollTimeout   time.Duration
	lastSchedule  time.Time
	now           func() time.Time
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	q queue.Queue,
	scraper Scraper,
	restaurants venue.Store,
	pub publisher.Publisher,
	cacheSvc cache.CacheService,
	crawlInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:           ctx,
		queue:         q,
		scraper:       scraper,
		restaurants:   restaurants,
		publisher:     pub,
		cache:         cacheSvc,
		logger:        logger.ForWorker(),
		crawlInterval: crawlInterval,
		pollTimeout:   5 * time.Second,
		now:           time.Now,
	}
}

// Start runs until the worker's context is cancelled
func (w *Worker) Start() {
	w.logger.Info().Dur("crawl_interval", w.crawlInterval).Msg("Worker started")
	for w.ctx.Err() == nil {
		w.scheduleIfDue()
		w.processNext()
	}
	w.logger.Info().Msg("Worker stopped")
}

// scheduleIfDue enqueues rescrapes once per crawl interval and trims the
// result streams afterwards
func (w *Worker) scheduleIfDue() {
	if w.restaurants == nil {
		return
	}
	now := w.now()
	if !w.lastSchedule.IsZero() && now.Sub(w.lastSchedule) < w.crawlInterval {
		return
	}
	w.lastSchedule = now

	if w.cache != nil {
		// held until it expires; never released
		_, err := cache.Acquire(w.cache, scheduleKey, w.crawlInterval)
		if stderrors.Is(err, cache.ErrLocked) {
			w.logger.Debug().Msg("Rescrapes already scheduled by another worker")
			return
		}
		if err != nil {
			w.logger.Warn().Err(err).Msg("Cannot take schedule key, scheduling anyway")
		}
	}

	venues, err := w.restaurants.List(w.ctx, venue.ListFilter{WithURL: true})
	if err != nil {
		w.logger.Error().Err(err).Msg("Cannot list venues for rescrape")
		return
	}
	for _, r := range venues {
		_, err := w.queue.Enqueue(w.ctx, queue.Job{
			RestaurantID: r.ID,
			URL:          r.URL,
			EnqueuedAt:   now.UTC(),
			JobType:      queue.JobTypeDealScraping,
		})
		if err != nil {
			w.logger.Error().Err(err).Str("restaurant_id", r.ID).Msg("Cannot enqueue rescrape")
		}
	}
	w.logger.Info().Int("venues", len(venues)).Msg("Rescrapes scheduled")

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(); err != nil {
			w.logger.Error().Err(err).Msg("Stream trimming failed")
		}
	}
}

// processNext handles at most one job. Jobs are acked whatever the outcome;
// the scheduler decides whether to try again.
func (w *Worker) processNext() {
	d, err := w.queue.Next(w.ctx, w.pollTimeout)
	if err != nil {
		if w.ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("Failed to read job")
			time.Sleep(time.Second)
		}
		return
	}
	if d == nil {
		return
	}

	log := w.logger.WithField("restaurant_id", d.Job.RestaurantID).WithField("job_id", d.ID)
	if d.Job.JobType != queue.JobTypeDealScraping {
		log.Warn().Str("job_type", d.Job.JobType).Msg("Ignoring unknown job type")
	} else {
		start := w.now()
		res, err := w.scraper.RunScrape(w.ctx, d.Job.RestaurantID, d.Job.URL)
		if err != nil {
			log.Error().Err(err).
				Str("error_type", string(errors.TypeOf(err))).
				Msg("Scrape failed")
		} else {
			log.Info().
				Int("deals", len(res.Deals)).
				Dur("elapsed", w.now().Sub(start)).
				Msg("Scrape finished")
		}
	}

	if err := w.queue.Ack(w.ctx, d.ID); err != nil {
		log.Error().Err(err).Msg("Failed to ack job")
	}
}
