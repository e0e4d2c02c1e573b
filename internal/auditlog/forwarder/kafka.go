// Package forwarder ships persisted audit records to Kafka so external
// consumers (alerting, SIEM) can react without reading the database.
package forwarder

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"assina/internal/auditlog"
)

// Producer is the subset of kgo.Client the forwarder needs. Tests swap in
// a fake; production wires *kgo.Client directly.
type Producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// payload is the JSON shape published per record.
type payload struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Event     string         `json:"event"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	URL       string         `json:"url,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Kafka implements auditlog.Observer. Produces are fire-and-forget: the
// audit write has already committed by the time Notify runs, so produce
// errors are only logged.
type Kafka struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

// New creates a Kafka forwarder publishing to the given topic.
func New(producer Producer, topic string, logger *slog.Logger) *Kafka {
	return &Kafka{producer: producer, topic: topic, logger: logger}
}

// NewClient builds a kgo client suitable for the forwarder.
func NewClient(brokers []string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(50*time.Millisecond),
	)
}

// Notify publishes the record, keyed by category so one category's events
// stay ordered within a partition.
func (k *Kafka) Notify(ctx context.Context, rec auditlog.Record) {
	value, err := json.Marshal(payload{
		ID:        rec.ID,
		Level:     string(rec.Level),
		Category:  rec.Category,
		Event:     rec.Event,
		Message:   rec.Message,
		Context:   rec.Context,
		UserID:    rec.UserID,
		IPAddress: rec.IPAddress,
		URL:       rec.URL,
		CreatedAt: rec.CreatedAt,
	})
	if err != nil {
		k.logger.WarnContext(ctx, "audit forward marshal failed", "event", rec.Event, "error", err)
		return
	}

	k.producer.Produce(ctx, &kgo.Record{
		Topic: k.topic,
		Key:   []byte(rec.Category),
		Value: value,
	}, func(r *kgo.Record, err error) {
		if err != nil {
			k.logger.Warn("audit forward produce failed", "event", rec.Event, "error", err)
		}
	})
}
