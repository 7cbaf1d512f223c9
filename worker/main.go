package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/foodmap/food-radar/internal/archive"
	"github.com/foodmap/food-radar/internal/cache"
	"github.com/foodmap/food-radar/internal/config"
	"github.com/foodmap/food-radar/internal/logger"
	"github.com/foodmap/food-radar/internal/models"
)

type reviewIndexer interface {
	IndexReview(ctx context.Context, doc models.ReviewDocument) error
}

func main() {
	_ = godotenv.Load()

	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	archiveClient, err := archive.New(cfg.Archive.Addr, cfg.Archive.Index, log)
	if err != nil {
		log.Error("init review archive", slog.Any("err", err))
		os.Exit(1)
	}

	seen := cache.New[struct{}](cfg.DedupeWindow, cfg.DedupeCapacity, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.ReviewTopic,
		GroupID:        cfg.ConsumerGroup,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.ReviewTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.ReviewTopic),
		slog.String("group", cfg.ConsumerGroup),
		slog.String("dlq_topic", cfg.ReviewTopic+"_dlq"),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, archiveClient, seen, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			dlqMsg := kafka.Message{
				Key:   msg.Key,
				Value: msg.Value,
				Headers: append(msg.Headers,
					kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
					kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
					kafka.Header{Key: "error", Value: []byte(err.Error())},
					kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
				),
			}

			// Retry DLQ write with exponential backoff
			dlqSuccess := false
			for attempt := 0; attempt < 5; attempt++ {
				if dlqErr := dlqWriter.WriteMessages(ctx, dlqMsg); dlqErr == nil {
					dlqSuccess = true
					log.Info("message sent to DLQ",
						slog.Int("partition", msg.Partition),
						slog.Int64("offset", msg.Offset),
						slog.Int("attempt", attempt+1),
					)
					break
				} else {
					backoff := time.Duration(1<<uint(attempt)) * time.Second
					log.Warn("DLQ write failed, retrying",
						slog.Any("err", dlqErr),
						slog.Int("attempt", attempt+1),
						slog.Duration("backoff", backoff),
					)
					select {
					case <-time.After(backoff):
					case <-ctx.Done():
						log.Info("context canceled during DLQ retry")
						return
					}
				}
			}

			// Only commit if DLQ write succeeded; otherwise skip commit and reprocess on restart
			if dlqSuccess {
				if err := reader.CommitMessages(ctx, msg); err != nil {
					log.Error("commit failed message to dlq", slog.Any("err", err))
				}
			} else {
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
			}
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

func processMessage(ctx context.Context, log *slog.Logger, indexer reviewIndexer, seen *cache.Bucketed[struct{}], msg kafka.Message) error {
	var review models.UserReview
	if err := json.Unmarshal(msg.Value, &review); err != nil {
		return err
	}

	review.ID = strings.TrimSpace(review.ID)
	review.VenueID = strings.TrimSpace(review.VenueID)
	if review.ID == "" {
		return errors.New("review has no id")
	}
	if review.VenueID == "" {
		return errors.New("review has no venue id")
	}
	if review.Rating < 0 || review.Rating > 5 {
		return fmt.Errorf("rating %v out of range", review.Rating)
	}
	if review.SubmittedAt.IsZero() {
		review.SubmittedAt = time.Now().UTC()
	}

	if _, ok := seen.Get(review.ID); ok {
		log.Debug("duplicate review", slog.String("id", review.ID))
		return nil
	}

	doc := models.ReviewDocument{
		ID:          review.ID,
		VenueID:     review.VenueID,
		Rating:      review.Rating,
		Text:        review.Text,
		SubmittedAt: review.SubmittedAt,
		ArchivedAt:  time.Now().UTC(),
	}

	if err := indexer.IndexReview(ctx, doc); err != nil {
		return err
	}

	seen.Put(review.ID, struct{}{})
	log.Info("archived review", slog.String("id", doc.ID), slog.String("venue", doc.VenueID))
	return nil
}
