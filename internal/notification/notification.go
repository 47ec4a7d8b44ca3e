package notification

import (
	"context"
	"log/slog"
)

const (
	// KindTransferCommitted indicates a committed instrument transfer.
	KindTransferCommitted = "transfer_committed"
)

// Message describes a notification payload.
type Message struct {
	Kind          string `json:"kind"`
	Destination   string `json:"destination"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Body          string `json:"body"`
}

// Notifier delivers notifications to downstream systems. Delivery is best
// effort; failures never affect ledger state.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"destination", message.Destination,
		"correlation_id", message.CorrelationID,
		"body", message.Body)
	return nil
}
