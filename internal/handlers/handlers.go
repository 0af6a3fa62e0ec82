package handlers

import (
	"time"

	"media-catalog/internal/bundle"
	"media-catalog/internal/importer"
	"media-catalog/internal/record"
)

// Handlers carries the catalog components the HTTP API is built over.
type Handlers struct {
	store      *record.Store
	dispatcher *importer.Dispatcher
	packages   *bundle.Provider
	raw        *bundle.RawProvider
	startedAt  time.Time
}

// New creates the handler set.
func New(store *record.Store, dispatcher *importer.Dispatcher, packages *bundle.Provider, raw *bundle.RawProvider) *Handlers {
	return &Handlers{
		store:      store,
		dispatcher: dispatcher,
		packages:   packages,
		raw:        raw,
		startedAt:  time.Now(),
	}
}
