package record

import (
	"os"
	"sync"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// Janitor collects artifact paths whose deletion failed (typically files
// still open in a player) and retries them at process shutdown. Deletion
// is best effort now, guaranteed eventually.
type Janitor struct {
	mu    sync.Mutex
	paths []string
}

// NewJanitor creates an empty deferred-deletion list.
func NewJanitor() *Janitor {
	return &Janitor{}
}

// Defer queues a path for deletion at shutdown.
func (j *Janitor) Defer(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, p := range j.paths {
		if p == path {
			return
		}
	}
	j.paths = append(j.paths, path)
	metrics.DeferredDeletionsPending.Set(float64(len(j.paths)))
	logging.Info("Deferred deletion of %s until shutdown", path)
}

// Pending returns the number of queued paths.
func (j *Janitor) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.paths)
}

// Flush attempts every queued deletion. Paths that still cannot be
// removed are logged and dropped; Flush is terminal.
func (j *Janitor) Flush() {
	j.mu.Lock()
	paths := j.paths
	j.paths = nil
	j.mu.Unlock()

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("shutdown cleanup failed for %s: %v", path, err)
			continue
		}
		logging.Debug("Shutdown cleanup removed %s", path)
	}
	metrics.DeferredDeletionsPending.Set(0)
}
