package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes attaches the catalog API to a router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/media", h.ListMedia).Methods(http.MethodGet)
	api.HandleFunc("/media", h.UploadMedia).Methods(http.MethodPost)
	api.HandleFunc("/media/{id}", h.GetMedia).Methods(http.MethodGet)
	api.HandleFunc("/media/{id}", h.DeleteMedia).Methods(http.MethodDelete)
	api.HandleFunc("/media/{id}/tags", h.UpdateTags).Methods(http.MethodPut)
	api.HandleFunc("/media/{id}/raw", h.GetRaw).Methods(http.MethodGet)
	api.HandleFunc("/media/{id}/package", h.ExportPackage).Methods(http.MethodGet)
	api.HandleFunc("/package", h.ImportPackage).Methods(http.MethodPost)

	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
}
