package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Maps holds the geodata-provider parameters shared by everything that
// talks upstream.
type Maps struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
}

// Archive holds the Elasticsearch review-archive parameters.
type Archive struct {
	Addr  string
	Index string
}

// API describes the HTTP-layer configuration.
type API struct {
	Maps
	Archive
	BindAddr      string
	CacheWindow   time.Duration
	CacheCapacity int
	KafkaBrokers  []string
	ReviewTopic   string
}

// Worker holds configuration for the Kafka -> Elasticsearch review archiver.
type Worker struct {
	Archive
	KafkaBrokers   []string
	ReviewTopic    string
	ConsumerGroup  string
	DedupeWindow   time.Duration
	DedupeCapacity int
	BatchSize      int
}

// Retention configures the archive cleanup loop.
type Retention struct {
	Archive
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

func loadMaps() (Maps, error) {
	m := Maps{
		BaseURL:    getEnv("MAPS_BASE_URL", "https://api.map.baidu.com"),
		APIKey:     getEnv("MAPS_API_KEY", ""),
		Timeout:    getDuration("MAPS_HTTP_TIMEOUT", "30s"),
		MaxRetries: getInt("MAPS_MAX_RETRIES", 3),
		RetryBase:  getDuration("MAPS_RETRY_BASE", "1s"),
	}

	if m.APIKey == "" {
		return m, fmt.Errorf("MAPS_API_KEY must be set")
	}
	if m.MaxRetries <= 0 {
		return m, fmt.Errorf("MAPS_MAX_RETRIES must be positive")
	}

	return m, nil
}

func loadArchive() Archive {
	return Archive{
		Addr:  getEnv("ELASTICSEARCH_ADDR", ""),
		Index: getEnv("ELASTICSEARCH_INDEX", "reviews"),
	}
}

// LoadAPI builds an API config from environment variables. Kafka and
// Elasticsearch are optional here: without brokers the API keeps reviews
// in memory only.
func LoadAPI() (*API, error) {
	m, err := loadMaps()
	if err != nil {
		return nil, err
	}

	c := &API{
		Maps:          m,
		Archive:       loadArchive(),
		BindAddr:      getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		CacheWindow:   getDuration("DETAIL_CACHE_WINDOW", "5m"),
		CacheCapacity: getInt("DETAIL_CACHE_CAPACITY", 128),
		KafkaBrokers:  splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		ReviewTopic:   getEnv("REVIEW_TOPIC", "reviews_submitted"),
	}

	if c.CacheWindow <= 0 {
		return nil, fmt.Errorf("DETAIL_CACHE_WINDOW must be positive")
	}
	if c.CacheCapacity <= 0 {
		return nil, fmt.Errorf("DETAIL_CACHE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Archive:        loadArchive(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		ReviewTopic:    getEnv("REVIEW_TOPIC", "reviews_submitted"),
		ConsumerGroup:  getEnv("KAFKA_CONSUMER_GROUP", "review-archiver"),
		DedupeWindow:   getDuration("WORKER_DEDUPE_WINDOW", "24h"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.Archive.Addr == "" {
		return nil, fmt.Errorf("ELASTICSEARCH_ADDR must be set")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Archive:   loadArchive(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "2160h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.Archive.Addr == "" {
		return nil, fmt.Errorf("ELASTICSEARCH_ADDR must be set")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
