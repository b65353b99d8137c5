// Package analytics publishes product events to Kafka. The original client
// dispatched these from the browser; doing it server-side keeps health data
// off third-party pixels while preserving the funnel metrics.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Topic is where all product events land; consumers fan out from there.
const Topic = "moreminutes.product-events"

// Event is a single product event. Props must be JSON-marshalable.
type Event struct {
	Name   string         `json:"name"`
	UserID string         `json:"user_id,omitempty"`
	At     time.Time      `json:"at"`
	Props  map[string]any `json:"props,omitempty"`
}

// Event names emitted by the domains.
const (
	EventPredictionCalculated  = "prediction_calculated"
	EventNudgeApplied          = "nudge_applied"
	EventSubscriptionActivated = "subscription_activated"
	EventSubscriptionCancelled = "subscription_cancelled"
	EventVaultItemCreated      = "vault_item_created"
	EventVaultDelivered        = "vault_delivered"
)

// Publisher produces events asynchronously. A nil *Publisher is a valid
// no-op sink, so callers never branch on whether Kafka is configured.
type Publisher struct {
	client *kgo.Client
	logger *slog.Logger
}

// New connects to the brokers and ensures the topic exists. Returns nil
// (and no error) when brokers is empty.
func New(brokers []string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := adm.CreateTopic(ctx, 3, 1, nil, Topic); err != nil {
		// Already-exists is the common case on restart; anything else is
		// logged and tolerated since analytics must never block the product.
		logger.Warn("ensure analytics topic", "topic", Topic, "error", err)
	}

	return &Publisher{client: client, logger: logger}, nil
}

// Publish fires an event without blocking the request path. Delivery
// failures are logged, never surfaced.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshal analytics event", "event", event.Name, "error", err)
		return
	}
	record := &kgo.Record{Key: []byte(event.UserID), Value: payload}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("publish analytics event", "event", event.Name, "error", err)
		}
	})
}

// Close flushes pending events and releases the client.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
