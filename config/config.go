package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Scrape job queue
	QueueStream string
	QueueGroup  string

	// Memcache configuration
	MemcacheAddr string

	// Postgres configuration
	DatabaseURL string

	// Scraping configuration
	CrawlInterval     time.Duration
	NavigationTimeout time.Duration
	BlockTime         time.Duration
	LockTime          time.Duration
	Renderer          string
	ChromeRemoteURL   string

	// Extraction model
	AnthropicAPIKey string
	AnthropicAPIURL string
	TextModel       string
	VisionModel     string

	// Places lookup
	GoogleAPIKey       string
	SearchRadiusMeters int

	// Result publishing
	Publisher    string
	KafkaBrokers []string
	KafkaTopic   string

	// Page-text archive
	ArchiveBucket string
	AWSRegion     string

	// API
	HTTPAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "deals"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 500),
		QueueStream:          getEnv("SCRAPE_QUEUE_STREAM", "scrape-jobs"),
		QueueGroup:           getEnv("SCRAPE_QUEUE_GROUP", "dealworker"),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		CrawlInterval:        time.Duration(getEnvInt("CRAWL_INTERVAL_SECONDS", 86400)) * time.Second,
		NavigationTimeout:    time.Duration(getEnvInt("NAVIGATION_TIMEOUT_SECONDS", 30)) * time.Second,
		BlockTime:            time.Duration(getEnvInt("BLOCK_SECONDS", 3600)) * time.Second,
		LockTime:             time.Duration(getEnvInt("LOCK_SECONDS", 900)) * time.Second,
		Renderer:             getEnv("RENDERER", "browser"),
		ChromeRemoteURL:      getEnv("CHROME_REMOTE_URL", ""),
		AnthropicAPIKey:      getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicAPIURL:      getEnv("ANTHROPIC_API_URL", "https://api.anthropic.com/v1/messages"),
		TextModel:            getEnv("ANTHROPIC_TEXT_MODEL", "claude-3-haiku-20240307"),
		VisionModel:          getEnv("ANTHROPIC_VISION_MODEL", "claude-3-haiku-20240307"),
		GoogleAPIKey:         getEnv("GOOGLE_API_KEY", ""),
		SearchRadiusMeters:   getEnvInt("SEARCH_RADIUS_METERS", 1500),
		Publisher:            getEnv("PUBLISHER", "redis"),
		KafkaBrokers:         splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "deal-scrapes"),
		ArchiveBucket:        getEnv("ARCHIVE_BUCKET", ""),
		AWSRegion:            getEnv("AWS_REGION", "ap-southeast-2"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		Environment:          getEnv("DEALWORKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the values every command depends on
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RedisStreamCount < 1 {
		return fmt.Errorf("REDIS_STREAM_COUNT must be at least 1")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("NAVIGATION_TIMEOUT_SECONDS must be positive")
	}
	switch c.Renderer {
	case "browser", "http":
	default:
		return fmt.Errorf("unknown RENDERER %q", c.Renderer)
	}
	switch c.Publisher {
	case "redis", "none":
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for the kafka publisher")
		}
	default:
		return fmt.Errorf("unknown PUBLISHER %q", c.Publisher)
	}
	return nil
}

// ValidateExtraction checks the settings needed to scrape deals
func (c *Config) ValidateExtraction() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	return nil
}

// ValidatePlaces checks the settings needed to discover venues
func (c *Config) ValidatePlaces() error {
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is required")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
