package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prediction domain's Prometheus metrics.
type Metrics struct {
	EstimatesTotal   *prometheus.CounterVec
	EstimateDuration prometheus.Histogram
	NudgesTotal      prometheus.Counter
	SavesTotal       prometheus.Counter
}

// New creates and registers the prediction metrics.
func New() *Metrics {
	return &Metrics{
		EstimatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "moreminutes_predictions_estimates_total",
			Help: "Life expectancy estimates computed, by seeding identity kind.",
		}, []string{"identity"}),
		EstimateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "moreminutes_predictions_estimate_duration_seconds",
			Help:    "Time spent in the survival walk.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		NudgesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moreminutes_predictions_nudges_total",
			Help: "Longevity nudge simulations applied.",
		}),
		SavesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "moreminutes_predictions_saves_total",
			Help: "Predictions persisted to history.",
		}),
	}
}

// ObserveEstimate records one estimate computation.
func (m *Metrics) ObserveEstimate(identity string, elapsed time.Duration) {
	m.EstimatesTotal.WithLabelValues(identity).Inc()
	m.EstimateDuration.Observe(elapsed.Seconds())
}
