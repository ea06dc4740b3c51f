// Package metrics exposes Prometheus instrumentation for the session layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters maintained by the scan and monitoring
// sessions. Each Metrics owns its registry so tests can construct isolated
// instances without collector collisions.
type Metrics struct {
	registry *prometheus.Registry

	ScansStarted     prometheus.Counter
	ScansSucceeded   prometheus.Counter
	ScansFailed      prometheus.Counter
	ScansSuperseded  prometheus.Counter
	EventsFolded     *prometheus.CounterVec
	HistoryEvictions prometheus.Counter
}

// New creates a Metrics with a fresh registry including the standard Go
// runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ScansStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "netglance_scans_started_total",
			Help: "Scan requests issued to the backend.",
		}),
		ScansSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "netglance_scans_succeeded_total",
			Help: "Scan requests that completed and were applied.",
		}),
		ScansFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "netglance_scans_failed_total",
			Help: "Scan requests that completed with an error.",
		}),
		ScansSuperseded: factory.NewCounter(prometheus.CounterOpts{
			Name: "netglance_scans_superseded_total",
			Help: "Scan completions discarded because a newer request was issued.",
		}),
		EventsFolded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netglance_monitoring_events_folded_total",
			Help: "Monitoring events folded into session state, by kind.",
		}, []string{"kind"}),
		HistoryEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "netglance_monitoring_history_evictions_total",
			Help: "Events evicted from the bounded monitoring history.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
