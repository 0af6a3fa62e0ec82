package handlers

import (
	"encoding/json"
	"net/http"

	"media-catalog/internal/logging"
)

// tagsRequest is the body of a tag replacement request.
type tagsRequest struct {
	Tags []string `json:"tags"`
}

// UpdateTags replaces an item's tag set. Tags are normalized (sorted,
// deduplicated) and the modification date refreshed.
func (h *Handlers) UpdateTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONError(w, "invalid media id", http.StatusBadRequest)
		return
	}

	var req tagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.store.LoadByID(id)
	if err != nil {
		writeJSONError(w, "media item not found", http.StatusNotFound)
		return
	}

	updated := rec.WithTags(req.Tags)
	if err := h.store.Update(updated); err != nil {
		logging.Error("failed to update tags of %s: %v", id, err)
		writeJSONError(w, "update failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, updated)
}
