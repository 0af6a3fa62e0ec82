package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Import pipeline metrics
var (
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_imports_total",
			Help: "Total number of media import attempts",
		},
		[]string{"kind", "outcome"}, // outcome: "success", "failure"
	)

	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_import_duration_seconds",
			Help:    "End-to-end media import duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	RollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_import_rollbacks_total",
			Help: "Total number of import rollbacks by failing pipeline step",
		},
		[]string{"step"},
	)
)

// Transcode metrics
var (
	TranscodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_transcode_duration_seconds",
			Help:    "External encoder run duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"kind"},
	)

	TranscodeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_transcode_failures_total",
			Help: "Total number of external encoder failures",
		},
		[]string{"kind", "reason"}, // reason: "exit", "spawn", "interrupted"
	)
)

// Package (bundle) metrics
var (
	BundleItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_bundle_items_total",
			Help: "Total number of bundle import candidates by result",
		},
		[]string{"result"}, // "created", "updated", "skipped", "failed"
	)
)

// Catalog state metrics
var (
	CatalogItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_catalog_items",
			Help: "Number of items currently in the catalog by kind",
		},
		[]string{"kind"},
	)

	DeferredDeletionsPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_deferred_deletions_pending",
			Help: "Number of artifact files queued for deletion at shutdown",
		},
	)
)
