package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the vault domain's Prometheus metrics.
type Metrics struct {
	UploadsTotal    *prometheus.CounterVec
	DeliveriesTotal *prometheus.CounterVec
	SweepDuration   prometheus.Histogram
}

// New creates and registers the vault metrics.
func New() *Metrics {
	return &Metrics{
		UploadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "moreminutes_vault_uploads_total",
			Help: "Vault items created, by media type.",
		}, []string{"type"}),
		DeliveriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "moreminutes_vault_deliveries_total",
			Help: "Vault delivery attempts, by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "moreminutes_vault_sweep_duration_seconds",
			Help:    "Time spent scanning for due vault items.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
