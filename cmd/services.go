package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"mealsteals/dealworker/config"
	"mealsteals/dealworker/helpers"
	"mealsteals/dealworker/internal/crawler"
	"mealsteals/dealworker/internal/db"
	"mealsteals/dealworker/internal/deals"
	"mealsteals/dealworker/internal/extract"
	"mealsteals/dealworker/internal/pipeline"
	"mealsteals/dealworker/internal/venue"
	"mealsteals/dealworker/logger"
	"mealsteals/dealworker/services/archive"
	"mealsteals/dealworker/services/cache"
	"mealsteals/dealworker/services/publisher"
	"mealsteals/dealworker/services/queue"
)

const maxModelTokens = 1024

// Services holds all the initialized services
type Services struct {
	Config      *config.Config
	Pool        *pgxpool.Pool
	Redis       redis.UniversalClient
	Cache       cache.CacheService
	Publisher   publisher.Publisher
	Restaurants venue.Store
	Deals       deals.Store
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Redis != nil {
		s.Redis.Close()
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// initializeServices connects to Postgres, Redis and memcache
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	services := &Services{Config: cfg}

	pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	services.Pool = pool
	services.Restaurants = venue.NewPostgresStore(pool)
	services.Deals = deals.NewPostgresStore(pool)

	services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Using Memcache at %s", cfg.MemcacheAddr)

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		services.Cleanup()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	services.Redis = client
	logger.Info("Connected to Redis at %s (DB: %d)", cfg.RedisAddr, cfg.RedisDB)

	pub, err := newPublisher(ctx, cfg, client)
	if err != nil {
		services.Cleanup()
		return nil, err
	}
	services.Publisher = pub
	return services, nil
}

// inMemoryServices backs a single dry-run scrape without any infrastructure
func inMemoryServices(cfg *config.Config) *Services {
	return &Services{
		Config:      cfg,
		Cache:       cache.NewMemoryCache(),
		Publisher:   publisher.Nop{},
		Restaurants: venue.NewMemoryStore(),
		Deals:       deals.NewMemoryStore(),
	}
}

func newPublisher(ctx context.Context, cfg *config.Config, client redis.UniversalClient) (publisher.Publisher, error) {
	switch cfg.Publisher {
	case "kafka":
		pub, err := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		logger.ForPublisher().Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("Publishing to Kafka")
		return pub, nil
	case "none":
		return publisher.Nop{}, nil
	default:
		logger.ForPublisher().Info().Str("stream", cfg.RedisStream).Int("shards", cfg.RedisStreamCount).Msg("Publishing to Redis streams")
		return publisher.NewRedisPublisher(ctx, client, cfg.RedisStream, cfg.RedisStreamCount, cfg.RedisStreamMaxLength), nil
	}
}

// newQueue joins the scrape job consumer group as consumer
func (s *Services) newQueue(ctx context.Context, consumer string) (*queue.RedisQueue, error) {
	return queue.NewRedisQueue(ctx, s.Redis, s.Config.QueueStream, s.Config.QueueGroup, consumer)
}

// newPipeline wires the extraction models, the rendering sessions and the
// optional archive around the stores
func (s *Services) newPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	cfg := s.Config
	if err := cfg.ValidateExtraction(); err != nil {
		return nil, err
	}

	p := &pipeline.Pipeline{
		Restaurants: s.Restaurants,
		Deals:       s.Deals,
		Reconciler:  deals.NewReconciler(),
		NewSession:  s.sessionFactory(),
		Text:        extract.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicAPIURL, cfg.TextModel, maxModelTokens),
		Vision:      extract.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicAPIURL, cfg.VisionModel, maxModelTokens),
		FetchImage:  helpers.FetchBytes,
		Cache:       s.Cache,
		Publisher:   s.Publisher,
		LockTTL:     cfg.LockTime,
		BlockTime:   cfg.BlockTime,
	}

	if cfg.ArchiveBucket != "" {
		a, err := archive.NewS3Archiver(ctx, cfg.AWSRegion, cfg.ArchiveBucket)
		if err != nil {
			return nil, err
		}
		p.Archive = a
		logger.ForComponent("archive").Info().Str("bucket", cfg.ArchiveBucket).Msg("Archiving extractions to S3")
	}
	return p, nil
}

func (s *Services) sessionFactory() pipeline.SessionFactory {
	cfg := s.Config
	if cfg.Renderer == "http" {
		return func(ctx context.Context) (crawler.PageRenderer, error) {
			return crawler.NewHTTPRenderer(s.Cache, cfg.BlockTime), nil
		}
	}
	return func(ctx context.Context) (crawler.PageRenderer, error) {
		r, err := crawler.NewBrowserRenderer(crawler.BrowserConfig{
			RemoteURL:         cfg.ChromeRemoteURL,
			NavigationTimeout: cfg.NavigationTimeout,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// newVenueService needs GOOGLE_API_KEY
func (s *Services) newVenueService() (*venue.Service, error) {
	if err := s.Config.ValidatePlaces(); err != nil {
		return nil, err
	}
	places, err := venue.NewGooglePlaces(s.Config.GoogleAPIKey)
	if err != nil {
		return nil, err
	}
	tz, err := venue.NewTZFinder()
	if err != nil {
		return nil, err
	}
	return venue.NewService(s.Restaurants, places, tz), nil
}
