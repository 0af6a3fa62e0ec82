package importer

import (
	"os"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// rollback accumulates undo actions (files to delete) as pipeline steps
// create artifacts. On any step's failure the whole log runs
// unconditionally, restoring the library to its pre-import state.
type rollback struct {
	paths []string
}

// add records a file for deletion should the import fail.
func (r *rollback) add(path string) {
	r.paths = append(r.paths, path)
}

// run deletes every recorded file, newest first. Cleanup is best effort:
// a failed deletion is logged and never masks the original error.
func (r *rollback) run(step Step) {
	metrics.RollbacksTotal.WithLabelValues(string(step)).Inc()

	for i := len(r.paths) - 1; i >= 0; i-- {
		path := r.paths[i]
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("rollback could not remove %s: %v", path, err)
			continue
		}
		logging.Debug("Rollback removed %s", path)
	}
	r.paths = nil
}
