// Package metrics exposes Prometheus instrumentation for update checks. Every
// Metrics value owns a private registry so that one-shot runs can export a
// clean snapshot to a textfile or a push gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// DefaultNamespace prefixes all metric names.
const DefaultNamespace = "lightcheck"

// Result labels.
const (
	ResultAccept = "accept"
	ResultReject = "reject"
)

// Metrics groups the collectors updated by the host runner and the CLI.
type Metrics struct {
	registry *prometheus.Registry

	checks        *prometheus.CounterVec
	checkDuration prometheus.Histogram
	participation prometheus.Gauge
	period        prometheus.Gauge
	preimageBytes prometheus.Counter
	logEvents     *prometheus.CounterVec
}

// New creates a Metrics instance registered on a fresh registry. An empty
// namespace selects DefaultNamespace. When withRuntime is set the Go runtime
// and process collectors are registered as well.
func New(namespace string, withRuntime bool) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Update checks by result and rejection reason.",
		}, []string{"result", "reason"}),
		checkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Time spent verifying a single update.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		participation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "participation_ratio",
			Help:      "Fraction of the sync committee that signed the last accepted update.",
		}),
		period: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "verified_period",
			Help:      "Sync committee period of the last accepted update.",
		}),
		preimageBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preimage_bytes_total",
			Help:      "Bytes loaded from the preimage store.",
		}),
		logEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_events_total",
			Help:      "Log entries emitted, by level and module.",
		}, []string{"level", "module"}),
	}
	m.registry.MustRegister(m.checks, m.checkDuration, m.participation, m.period, m.preimageBytes, m.logEvents)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the underlying registry, e.g. for promhttp handlers.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveAccept records an accepted update.
func (m *Metrics) ObserveAccept(elapsed time.Duration, period uint64, participation float64) {
	m.checks.WithLabelValues(ResultAccept, "ok").Inc()
	m.checkDuration.Observe(elapsed.Seconds())
	m.period.Set(float64(period))
	m.participation.Set(participation)
}

// ObserveReject records a rejected update with its reason label.
func (m *Metrics) ObserveReject(elapsed time.Duration, reason string) {
	m.checks.WithLabelValues(ResultReject, reason).Inc()
	m.checkDuration.Observe(elapsed.Seconds())
}

// AddPreimageBytes counts bytes read from the preimage store.
func (m *Metrics) AddPreimageBytes(n int) {
	m.preimageBytes.Add(float64(n))
}
