package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"media-catalog/internal/bundle"
	"media-catalog/internal/logging"
	"media-catalog/internal/record"
)

// ExportPackage streams one item as a zip bundle.
func (h *Handlers) ExportPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONError(w, "invalid media id", http.StatusBadRequest)
		return
	}

	rec, err := h.store.LoadByID(id)
	if err != nil {
		writeJSONError(w, "media item not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", rec.ID.String()+".zip"))

	if err := h.packages.Export([]record.MediaRecord{rec}, w); err != nil {
		// Headers are committed; all we can do is log
		logging.Error("package export of %s failed: %v", id, err)
	}
}

// ImportPackage applies an uploaded zip bundle. The archive arrives as
// the request body; zip needs random access, so it is staged to disk
// first.
func (h *Handlers) ImportPackage(w http.ResponseWriter, r *http.Request) {
	scratch, err := os.MkdirTemp("", "package-*")
	if err != nil {
		logging.Error("failed to create package scratch dir: %v", err)
		writeJSONError(w, "package import failed", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logging.Warn("failed to remove package scratch dir %s: %v", scratch, err)
		}
	}()

	bundlePath := filepath.Join(scratch, "bundle.zip")
	staged, err := os.Create(bundlePath)
	if err != nil {
		logging.Error("failed to stage package: %v", err)
		writeJSONError(w, "package import failed", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(staged, r.Body); err != nil {
		_ = staged.Close()
		writeJSONError(w, "failed to read package body", http.StatusBadRequest)
		return
	}
	if err := staged.Close(); err != nil {
		logging.Error("failed to stage package: %v", err)
		writeJSONError(w, "package import failed", http.StatusInternalServerError)
		return
	}

	result, err := h.packages.ImportFile(r.Context(), bundlePath)
	if err != nil {
		writeJSONError(w, "not a valid package archive", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, packageResponse(result))
}

// packageItem is the JSON shape of one bundle candidate's outcome.
type packageItem struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

type packageSummary struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
	Items   []packageItem `json:"items"`
}

func packageResponse(result bundle.Result) packageSummary {
	summary := packageSummary{
		Created: result.Count(bundle.OutcomeCreated),
		Updated: result.Count(bundle.OutcomeUpdated),
		Skipped: result.Count(bundle.OutcomeSkipped),
		Failed:  result.Count(bundle.OutcomeFailed),
		Items:   make([]packageItem, 0, len(result.Items)),
	}
	for _, item := range result.Items {
		out := packageItem{ID: item.ID.String(), Outcome: string(item.Outcome)}
		if item.Err != nil {
			out.Error = item.Err.Error()
		}
		summary.Items = append(summary.Items, out)
	}
	return summary
}
