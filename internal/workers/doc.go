// Package workers computes worker pool sizes from the available CPU
// budget. Bundle imports apply candidates concurrently; the pool size
// comes from here and can be overridden with IMPORT_WORKERS.
package workers
