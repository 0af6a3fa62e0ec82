// Package middleware provides HTTP middleware for the catalog API:
// W3C-format request logging, Prometheus instrumentation with bounded
// label cardinality, and opportunistic gzip compression of JSON
// responses.
package middleware
