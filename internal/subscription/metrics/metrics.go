package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the subscription domain's Prometheus metrics.
type Metrics struct {
	WebhooksTotal      *prometheus.CounterVec
	StatusLookupsTotal *prometheus.CounterVec
}

// New creates and registers the subscription metrics.
func New() *Metrics {
	return &Metrics{
		WebhooksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "moreminutes_subscription_webhooks_total",
			Help: "PayPal webhook events processed, by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		StatusLookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "moreminutes_subscription_status_lookups_total",
			Help: "Subscription status lookups, by derived status.",
		}, []string{"status"}),
	}
}
