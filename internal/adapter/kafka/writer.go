package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/nws-warnings/internal/config"
	"github.com/couchcryptid/nws-warnings/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes sensor snapshots to a Kafka topic, keyed by sensor id so
// that each sensor's states stay ordered within a partition.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Publish serializes and writes one snapshot.
func (w *Writer) Publish(ctx context.Context, s domain.Snapshot) error {
	msg, err := serializeToMessage(s)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.SensorID, err)
	}
	w.logger.Debug("published state to kafka", "sensor", s.SensorID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Snapshot into a Kafka message.
func serializeToMessage(s domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.SensorID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "sensor_id", Value: []byte(s.SensorID)},
			{Key: "state", Value: []byte(s.State)},
			{Key: "updated_at", Value: []byte(s.UpdatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
