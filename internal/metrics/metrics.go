// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "settleup"

// Metrics holds every collector. A nil *Metrics is valid and records nothing,
// so packages can take one without forcing tests to build a registry.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests  *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	expenses     *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	casConflicts prometheus.Counter
	publishFails *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, including the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC requests by procedure and Connect status code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		expenses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_created_total",
			Help:      "Expenses recorded, by split type.",
		}, []string{"split_type"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_transitions_total",
			Help:      "Split status changes that were written.",
		}, []string{"from", "to"}),
		casConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_status_conflicts_total",
			Help:      "Status updates that lost a compare-and-set race and were retried.",
		}),
		publishFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Integration events that could not be published.",
		}, []string{"type"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.expenses,
		m.transitions,
		m.casConflicts,
		m.publishFails,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

func (m *Metrics) ExpenseCreated(splitType string) {
	if m == nil {
		return
	}
	m.expenses.WithLabelValues(splitType).Inc()
}

func (m *Metrics) SplitTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) StatusConflict() {
	if m == nil {
		return
	}
	m.casConflicts.Inc()
}

func (m *Metrics) PublishFailed(eventType string) {
	if m == nil {
		return
	}
	m.publishFails.WithLabelValues(eventType).Inc()
}
