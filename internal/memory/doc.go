// Package memory configures the Go heap limit for containerized
// deployments. Transcoding and libvips allocate outside the Go heap, so
// only a share of the container limit is handed to the runtime.
package memory
