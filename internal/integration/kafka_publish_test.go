//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkatc "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/fogbelt/eventmap/internal/adapter/kafka"
	"github.com/fogbelt/eventmap/internal/config"
	"github.com/fogbelt/eventmap/internal/domain"
)

const testSinkTopic = "normalized-markers-test"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := kafkatc.Run(ctx, "confluentinc/confluent-local:7.5.0",
		kafkatc.WithClusterID("eventmap-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPublishMarkers verifies the publisher round-trips normalized marker
// records through a real broker with keys and headers intact.
func TestPublishMarkers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	now := time.Date(2025, 7, 4, 15, 0, 0, 0, time.UTC)
	markers := []domain.MarkerRecord{
		{
			ID:           "events-aaaa000011112222",
			Title:        "Night Market",
			DateRange:    domain.DateRange{StartISO: "2025-07-04T00:00:00.000Z", AllDay: true},
			Location:     domain.GeoPoint{Lat: 37.7648, Lng: -122.4195},
			IconHint:     "market",
			Source:       "events",
			NormalizedAt: now,
		},
		{
			ID:           "cleanups-bbbb333344445555",
			Title:        "Ocean Beach Cleanup",
			DateRange:    domain.DateRange{StartISO: "2025-07-05T00:00:00.000Z", AllDay: true},
			Location:     domain.GeoPoint{Lat: 37.7596, Lng: -122.5107},
			IconHint:     "broom",
			Source:       "cleanups",
			NormalizedAt: now,
		},
	}

	pub := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = pub.Close() })
	require.NoError(t, pub.PublishMarkers(ctx, markers))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make(map[string]domain.MarkerRecord, len(markers))
	for range markers {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")

		var rec domain.MarkerRecord
		require.NoError(t, json.Unmarshal(msg.Value, &rec))
		assert.Equal(t, rec.ID, string(msg.Key), "messages are keyed by record ID")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, rec.Source, headers["source"])
		_, err = time.Parse(time.RFC3339, headers["normalized_at"])
		assert.NoError(t, err, "normalized_at should be valid RFC3339")

		received[rec.ID] = rec
	}

	require.Len(t, received, 2)
	assert.Equal(t, "Night Market", received["events-aaaa000011112222"].Title)
	assert.True(t, received["events-aaaa000011112222"].DateRange.AllDay)
	assert.Equal(t, "broom", received["cleanups-bbbb333344445555"].IconHint)
}
