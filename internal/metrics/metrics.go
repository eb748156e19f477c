// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camfeed_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "camfeed_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// gRPC
	GRPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camfeed_grpc_requests_total",
		Help: "Total number of gRPC requests",
	}, []string{"method", "code"})

	// Ingestion
	ParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camfeed_parse_errors_total",
		Help: "Total number of request bodies rejected as malformed",
	})

	Records = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camfeed_records_total",
		Help: "Reconciled records by history and latest-state outcome",
	}, []string{"history", "latest"})

	ReconcileFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camfeed_reconcile_failures_total",
		Help: "Records that failed reconciliation, by reason",
	}, []string{"reason"})

	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "camfeed_reconcile_duration_seconds",
		Help:    "Time spent reconciling one record",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
	})

	ArchiveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camfeed_archive_failures_total",
		Help: "Raw payload uploads that failed",
	})

	// DB
	DBOpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "camfeed_db_open_connections",
		Help: "Number of established database connections",
	})

	DBInUseConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "camfeed_db_in_use_connections",
		Help: "Number of database connections currently in use",
	})
)

// Failure reasons used with ReconcileFailures.
const (
	ReasonValidation = "validation"
	ReasonTimeout    = "timeout"
	ReasonConstraint = "constraint"
	ReasonStore      = "store"
)
