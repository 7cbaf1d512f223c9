package config_test

import (
	"testing"
	"time"

	"github.com/foodmap/food-radar/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("MAPS_API_KEY", "test-key")
	t.Setenv("MAPS_BASE_URL", "")
	t.Setenv("MAPS_HTTP_TIMEOUT", "")
	t.Setenv("API_BIND_ADDR", "")
	t.Setenv("DETAIL_CACHE_WINDOW", "")
	t.Setenv("DETAIL_CACHE_CAPACITY", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REVIEW_TOPIC", "")
	t.Setenv("ELASTICSEARCH_ADDR", "")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "https://api.map.baidu.com", cfg.BaseURL)
	require.Equal(t, "test-key", cfg.APIKey)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, 3, cfg.MaxRetries)
	require.Equal(t, time.Second, cfg.RetryBase)
	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, 5*time.Minute, cfg.CacheWindow)
	require.Equal(t, 128, cfg.CacheCapacity)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, "reviews_submitted", cfg.ReviewTopic)
	require.Empty(t, cfg.Archive.Addr)
	require.Equal(t, "reviews", cfg.Archive.Index)
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("MAPS_API_KEY", "ak")
	t.Setenv("MAPS_BASE_URL", "http://localhost:7777")
	t.Setenv("MAPS_HTTP_TIMEOUT", "5s")
	t.Setenv("MAPS_MAX_RETRIES", "5")
	t.Setenv("MAPS_RETRY_BASE", "100ms")
	t.Setenv("API_BIND_ADDR", "127.0.0.1:9000")
	t.Setenv("DETAIL_CACHE_WINDOW", "1m")
	t.Setenv("DETAIL_CACHE_CAPACITY", "16")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("REVIEW_TOPIC", "reviews_test")
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "reviews_test")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:7777", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, 5, cfg.MaxRetries)
	require.Equal(t, 100*time.Millisecond, cfg.RetryBase)
	require.Equal(t, "127.0.0.1:9000", cfg.BindAddr)
	require.Equal(t, time.Minute, cfg.CacheWindow)
	require.Equal(t, 16, cfg.CacheCapacity)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "reviews_test", cfg.ReviewTopic)
	require.Equal(t, "http://localhost:9200", cfg.Archive.Addr)
	require.Equal(t, "reviews_test", cfg.Archive.Index)
}

func TestLoadAPIMissingKey(t *testing.T) {
	t.Setenv("MAPS_API_KEY", "")

	_, err := config.LoadAPI()
	require.Error(t, err)
	require.Contains(t, err.Error(), "MAPS_API_KEY")
}

func TestLoadAPIBadDurationFallsBack(t *testing.T) {
	t.Setenv("MAPS_API_KEY", "ak")
	t.Setenv("MAPS_HTTP_TIMEOUT", "not-a-duration")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REVIEW_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")
	t.Setenv("WORKER_DEDUPE_WINDOW", "")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "")
	t.Setenv("WORKER_BATCH_SIZE", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.Archive.Addr)
	require.Equal(t, "reviews", cfg.Archive.Index)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "reviews_submitted", cfg.ReviewTopic)
	require.Equal(t, "review-archiver", cfg.ConsumerGroup)
	require.Equal(t, 24*time.Hour, cfg.DedupeWindow)
	require.Equal(t, 20000, cfg.DedupeCapacity)
	require.Equal(t, 10, cfg.BatchSize)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("ELASTICSEARCH_INDEX", "reviews_v2")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("REVIEW_TOPIC", "reviews_custom")
	t.Setenv("KAFKA_CONSUMER_GROUP", "archiver-2")
	t.Setenv("WORKER_DEDUPE_WINDOW", "1h")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "100")
	t.Setenv("WORKER_BATCH_SIZE", "25")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.Archive.Addr)
	require.Equal(t, "reviews_v2", cfg.Archive.Index)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "reviews_custom", cfg.ReviewTopic)
	require.Equal(t, "archiver-2", cfg.ConsumerGroup)
	require.Equal(t, time.Hour, cfg.DedupeWindow)
	require.Equal(t, 100, cfg.DedupeCapacity)
	require.Equal(t, 25, cfg.BatchSize)
}

func TestLoadWorkerMissingElasticsearch(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")

	_, err := config.LoadWorker()
	require.Error(t, err)
	require.Contains(t, err.Error(), "ELASTICSEARCH_ADDR")
}

func TestLoadRetentionDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("RETENTION_CRON", "")
	t.Setenv("RETENTION_MAX_AGE", "")
	t.Setenv("RETENTION_BATCH_SIZE", "")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.Archive.Addr)
	require.Equal(t, "reviews", cfg.Archive.Index)
	require.Equal(t, 24*time.Hour, cfg.Interval)
	require.Equal(t, 2160*time.Hour, cfg.MaxAge)
	require.Equal(t, 500, cfg.BatchSize)
}

func TestLoadRetentionOverrides(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9200")
	t.Setenv("RETENTION_CRON", "6h")
	t.Setenv("RETENTION_MAX_AGE", "720h")
	t.Setenv("RETENTION_BATCH_SIZE", "50")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, 6*time.Hour, cfg.Interval)
	require.Equal(t, 720*time.Hour, cfg.MaxAge)
	require.Equal(t, 50, cfg.BatchSize)
}
