// Package kafka publishes the normalized marker set to a sink topic so
// downstream consumers (search indexers, notification jobs) see the same
// records the map renders.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/fogbelt/eventmap/internal/config"
	"github.com/fogbelt/eventmap/internal/domain"
)

// Publisher produces normalized marker records to a Kafka topic.
// It implements pipeline.MarkerPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishMarkers serializes and publishes the marker set in a single
// WriteMessages call. Deterministic record IDs key the messages, so
// reprocessing a feed compacts cleanly.
func (p *Publisher) PublishMarkers(ctx context.Context, markers []domain.MarkerRecord) error {
	if len(markers) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(markers))
	for i := range markers {
		msg, err := serializeToMessage(markers[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	p.logger.Debug("publishing markers", "count", len(msgs))
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a marker record into a Kafka message.
func serializeToMessage(rec domain.MarkerRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize marker: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(rec.Source)},
			{Key: "normalized_at", Value: []byte(rec.NormalizedAt.Format(time.RFC3339))},
		},
	}, nil
}
