// Package pipeline runs one venue's scrape end to end: discovery,
// extraction, reconciliation against stored deals and result fan-out.
package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"mealsteals/dealworker/internal/crawler"
	"mealsteals/dealworker/internal/deals"
	"mealsteals/dealworker/internal/extract"
	"mealsteals/dealworker/internal/venue"
	"mealsteals/dealworker/logger"
	"mealsteals/dealworker/pkg/errors"
	"mealsteals/dealworker/services/archive"
	"mealsteals/dealworker/services/cache"
	"mealsteals/dealworker/services/publisher"
)

// SessionFactory opens a fresh rendering session for one scrape
type SessionFactory func(ctx context.Context) (crawler.PageRenderer, error)

// ScrapeResult summarizes one reconciliation pass
type ScrapeResult struct {
	RestaurantID string       `json:"restaurant_id"`
	Deals        []deals.Deal `json:"deals"`
	Created      int          `json:"created"`
	Updated      int          `json:"updated"`
	Unchanged    int          `json:"unchanged"`
	Obsoleted    int          `json:"obsoleted"`
}

// Pipeline holds the collaborators of a scrape. Archive and Publisher are optional.
type Pipeline struct {
	Restaurants venue.Store
	Deals       deals.Store
	Reconciler  *deals.Reconciler
	NewSession  SessionFactory
	Text        extract.TextModel
	Vision      extract.VisionModel
	FetchImage  extract.ImageFetcher
	Cache       cache.CacheService
	Archive     archive.Archiver
	Publisher   publisher.Publisher

	LockTTL   time.Duration
	BlockTime time.Duration
}

func lockKey(restaurantID string) string  { return "scrapelock:" + restaurantID }
func blockKey(restaurantID string) string { return "scrapeblock:" + restaurantID }

// RunScrape scrapes url for restaurantID and reconciles the result. An empty
// url falls back to the stored venue website. Scrapes of the same
// restaurant never overlap.
func (p *Pipeline) RunScrape(ctx context.Context, restaurantID, url string) (*ScrapeResult, error) {
	log := logger.ForVenue(restaurantID)

	if url == "" {
		r, err := p.Restaurants.GetByID(ctx, restaurantID)
		if err != nil {
			return nil, err
		}
		url = r.URL
	}
	if url == "" {
		return nil, errors.NewValidation(restaurantID, "restaurant has no website")
	}

	if _, err := p.Cache.Get(blockKey(restaurantID)); err == nil {
		return nil, errors.NewNavigation(restaurantID, "entry page recently unreachable, skipping", nil)
	}

	lock, err := cache.Acquire(p.Cache, lockKey(restaurantID), p.LockTTL)
	if stderrors.Is(err, cache.ErrLocked) {
		return nil, errors.NewValidation(restaurantID, "scrape already running")
	}
	if err != nil {
		return nil, errors.NewCache(restaurantID, "acquire scrape lock", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn().Err(err).Msg("Failed to release scrape lock")
		}
	}()

	session, err := p.NewSession(ctx)
	if err != nil {
		return nil, errors.NewNavigation(restaurantID, "open rendering session", err)
	}
	defer session.Close()

	started := time.Now()
	candidates, err := p.collect(ctx, session, restaurantID, url, log)
	if err != nil {
		if errors.TypeOf(err) == errors.ErrorTypeNavigation {
			p.Cache.Set(blockKey(restaurantID), []byte(url), p.BlockTime)
		}
		return nil, err
	}

	existing, err := p.Deals.ListActiveByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, errors.NewStorage(restaurantID, "load active deals", err)
	}
	plan := p.Reconciler.Reconcile(restaurantID, candidates, existing)
	if err := p.Deals.ApplyPlan(ctx, plan); err != nil {
		return nil, errors.NewStorage(restaurantID, "apply reconciliation", err)
	}

	result := &ScrapeResult{
		RestaurantID: restaurantID,
		Deals:        plan.Active(),
		Created:      len(plan.Created),
		Updated:      len(plan.Updated),
		Unchanged:    len(plan.Unchanged),
		Obsoleted:    len(plan.Obsoleted),
	}
	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("unchanged", result.Unchanged).
		Int("obsoleted", result.Obsoleted).
		Dur("elapsed", time.Since(started)).
		Msg("Scrape reconciled")

	p.publish(result, log)
	return result, nil
}

// collect discovers candidate pages and extracts deals from each of them.
// Only an unreachable entry page fails the venue.
func (p *Pipeline) collect(ctx context.Context, session crawler.PageRenderer, restaurantID, url string, log *logger.Logger) ([]deals.Candidate, error) {
	links, err := crawler.NewDiscoverer(session, log).Discover(ctx, url)
	if err != nil {
		return nil, err
	}
	log.Info().Int("candidates", len(links)).Str("url", url).Msg("Discovered candidate pages")

	extractor := extract.NewExtractor(session, p.Text, p.Vision, p.FetchImage, log)
	var out []deals.Candidate
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ext, err := extractor.Extract(ctx, link)
		if err != nil {
			log.Warn().Err(err).Str("url", link.URL).Msg("Skipping candidate page")
			continue
		}
		p.archive(ctx, restaurantID, ext, log)
		for _, c := range ext.Candidates {
			if c.Dish != "" {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (p *Pipeline) archive(ctx context.Context, restaurantID string, ext *extract.Extraction, log *logger.Logger) {
	if p.Archive == nil {
		return
	}
	candidates, err := json.Marshal(ext.Candidates)
	if err != nil {
		log.Warn().Err(err).Msg("Cannot encode candidates for archive")
		return
	}
	err = p.Archive.Put(ctx, archive.Record{
		RestaurantID: restaurantID,
		URL:          ext.URL,
		Source:       ext.Source,
		Outcome:      string(ext.Outcome),
		Text:         ext.Text,
		ImageLink:    ext.ImageLink,
		Candidates:   candidates,
		ScrapedAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Str("url", ext.URL).Msg("Failed to archive extraction")
	}
}

func (p *Pipeline) publish(result *ScrapeResult, log *logger.Logger) {
	if p.Publisher == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Msg("Cannot encode scrape result")
		return
	}
	if err := p.Publisher.Publish(result.RestaurantID, data); err != nil {
		log.Error().Err(errors.NewPublisher(result.RestaurantID, "publish scrape result", err)).Msg("Publish failed")
	}
}

// EvaluateOpenNow reports whether r is open in its own timezone
func EvaluateOpenNow(r venue.Restaurant) bool {
	return r.IsOpenNow()
}
