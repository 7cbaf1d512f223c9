package reviews

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/foodmap/food-radar/internal/models"
)

// Publisher forwards accepted reviews to the archive stream. Implementations
// must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, r models.UserReview) error
}

// KafkaPublisher writes review events to a Kafka topic, keyed by venue id so
// one venue's reviews stay ordered within a partition.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: kafka.NewWriter(kafka.WriterConfig{
			Brokers:     brokers,
			Topic:       topic,
			MaxAttempts: 3,
		}),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r models.UserReview) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.VenueID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish review %s: %w", r.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
