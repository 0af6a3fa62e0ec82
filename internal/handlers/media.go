package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"media-catalog/internal/importer"
	"media-catalog/internal/logging"
)

// maxUploadMemory bounds the in-memory part of multipart parsing; larger
// uploads spill to temp files.
const maxUploadMemory = 32 << 20

// ListMedia returns every record in the catalog.
func (h *Handlers) ListMedia(w http.ResponseWriter, _ *http.Request) {
	records, err := h.store.List()
	if err != nil {
		logging.Error("failed to list catalog: %v", err)
		writeJSONError(w, "failed to list catalog", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, records)
}

// GetMedia returns one record by id.
func (h *Handlers) GetMedia(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, rec)
}

// UploadMedia imports one file from a multipart form. The form field is
// named "file"; its filename becomes the item's display name.
func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close upload: %v", err)
		}
	}()

	// The import pipeline works on paths; stage the upload under its own
	// original filename so the pipeline sees the real name.
	scratch, err := os.MkdirTemp("", "upload-*")
	if err != nil {
		logging.Error("failed to create upload scratch dir: %v", err)
		writeJSONError(w, "upload failed", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logging.Warn("failed to remove upload scratch dir %s: %v", scratch, err)
		}
	}()

	sourcePath := filepath.Join(scratch, filepath.Base(header.Filename))
	staged, err := os.Create(sourcePath)
	if err != nil {
		logging.Error("failed to stage upload: %v", err)
		writeJSONError(w, "upload failed", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(staged, file); err != nil {
		_ = staged.Close()
		logging.Error("failed to stage upload: %v", err)
		writeJSONError(w, "upload failed", http.StatusInternalServerError)
		return
	}
	if err := staged.Close(); err != nil {
		logging.Error("failed to stage upload: %v", err)
		writeJSONError(w, "upload failed", http.StatusInternalServerError)
		return
	}

	rec, err := h.dispatcher.Import(r.Context(), sourcePath)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedSource) {
			writeJSONError(w, "unsupported media format", http.StatusUnsupportedMediaType)
			return
		}
		logging.Error("import of %s failed: %v", header.Filename, err)
		writeJSONError(w, "import failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, rec)
}

// DeleteMedia removes a record and its artifacts.
func (h *Handlers) DeleteMedia(w http.ResponseWriter, r *http.Request) {
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

	if err := h.store.Delete(rec); err != nil {
		logging.Error("failed to delete %s: %v", id, err)
		writeJSONError(w, "delete failed", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, "deleted")
}

// GetRaw streams the primary media artifact verbatim.
func (h *Handlers) GetRaw(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", rec.MimeType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", rec.ID.String()+"."+rec.Extension))

	if err := h.raw.Export(rec, w); err != nil {
		// Headers are committed; all we can do is log
		logging.Error("raw export of %s failed: %v", id, err)
	}
}
