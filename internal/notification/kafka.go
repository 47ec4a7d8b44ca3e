package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes notifications to a Kafka topic for downstream
// consumers (statements, push delivery).
type KafkaNotifier struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaNotifier builds a notifier writing to the given broker and topic.
func NewKafkaNotifier(broker, topic string, logger *slog.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
	}
	return &KafkaNotifier{writer: writer, logger: logger}
}

// Send publishes the message keyed by correlation id.
func (n *KafkaNotifier) Send(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, n.writer.WriteTimeout)
	defer cancel()

	if err := n.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(message.CorrelationID),
		Value: payload,
	}); err != nil {
		n.logger.Error("publish notification", "kind", message.Kind, "error", err)
		return err
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
