package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "drawsync"

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	cycles          *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	inserted        prometheus.Counter
	navAttempts     *prometheus.CounterVec
	publishFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		cycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		cycleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cycle_duration_seconds",
				Help:      "Wall time of one pipeline run",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8),
			},
		),
		inserted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "draws_inserted_total",
				Help:      "Draws written to storage",
			},
		),
		navAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "navigation_attempts_total",
				Help:      "Upstream page navigation attempts by result",
			},
			[]string{"result"},
		),
		publishFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_failures_total",
				Help:      "Draw notifications that could not be published",
			},
		),
	}
}

func (m *Metrics) ObserveCycle(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
	m.cycleDuration.Observe(d.Seconds())
}

func (m *Metrics) DrawInserted() {
	if m == nil {
		return
	}
	m.inserted.Inc()
}

func (m *Metrics) NavigationAttempt(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.navAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) PublishFailed() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}
