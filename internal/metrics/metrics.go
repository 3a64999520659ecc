// Package metrics holds the Prometheus instruments used across the service.
// Collectors are registered with the default registry, so serving
// promhttp.Handler on /metrics is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_transitions_total",
			Help: "Verification transitions applied, by action.",
		}, []string{"action"})

	AuditEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Audit events appended, by action.",
		}, []string{"action"})

	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Exports rendered, by kind and format.",
		}, []string{"kind", "format"})

	KPIComputationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kpi_computations_total",
			Help: "Term KPI bundles computed.",
		})

	ArchivedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_archive_writes_total",
			Help: "Audit events written to the archive, by outcome.",
		}, []string{"outcome"})

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		TransitionsTotal,
		AuditEventsTotal,
		ExportsTotal,
		KPIComputationsTotal,
		ArchivedEventsTotal,
		HTTPDuration,
	)
}
