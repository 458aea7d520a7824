// Package metrics exposes pull pipeline counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"partpulse/internal"
)

const namespace = "partpulse"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	lookups       *prometheus.CounterVec
	skippedOffers prometheus.Counter
	rowsAppended  prometheus.Counter
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	lastSuccess   prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Part lookups by outcome.",
		}, []string{"outcome"}),
		skippedOffers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_offers_total",
			Help:      "Stock offers dropped because of an unreadable shape.",
		}),
		rowsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_appended_total",
			Help:      "Product rows appended to the sink.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Pull timestamp of the last successfully stored batch.",
		}),
	}
	reg.MustRegister(m.lookups, m.skippedOffers, m.rowsAppended, m.runs, m.runDuration, m.lastSuccess)
	return m
}

func (m *Metrics) ObserveLookup(status internal.LookupStatus) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ObserveSkippedOffers(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedOffers.Add(float64(n))
}

// ObserveRun records a finished run. result is "success", "input_failed" or "sink_failed".
func (m *Metrics) ObserveRun(result string, rows int, took time.Duration, pulledAt time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.Observe(took.Seconds())
	if result == "success" {
		m.rowsAppended.Add(float64(rows))
		m.lastSuccess.Set(float64(pulledAt.Unix()))
	}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
