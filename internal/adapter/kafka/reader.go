// Package kafka adapts a Kafka topic into the status feed's Extractor.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/voltatlas/station-locator/internal/config"
	"github.com/voltatlas/station-locator/internal/domain"
)

// Reader consumes station status updates from the status topic.
// It implements feed.Extractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured status topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaStatusTopic,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  500 * time.Millisecond,
	})
	return &Reader{reader: r, logger: logger}
}

// Extract blocks until the next status update arrives. Offsets are committed
// on read; status updates are idempotent, so a redelivered message applies
// the same state again harmlessly.
func (r *Reader) Extract(ctx context.Context) (domain.StatusUpdate, error) {
	msg, err := r.reader.ReadMessage(ctx)
	if err != nil {
		return domain.StatusUpdate{}, fmt.Errorf("read status message: %w", err)
	}
	return mapMessageToStatusUpdate(msg)
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToStatusUpdate deserializes a Kafka message value into a
// StatusUpdate.
func mapMessageToStatusUpdate(msg kafkago.Message) (domain.StatusUpdate, error) {
	update, err := domain.ParseStatusUpdate(msg.Value)
	if err != nil {
		return domain.StatusUpdate{}, fmt.Errorf("message at %s/%d offset %d: %w",
			msg.Topic, msg.Partition, msg.Offset, err)
	}
	return update, nil
}
