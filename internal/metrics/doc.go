// Package metrics defines the Prometheus metrics exposed by the media
// catalog service: HTTP request metrics, import pipeline counters and
// durations, external encoder metrics, bundle import results, and catalog
// state gauges updated by a periodic Collector.
package metrics
