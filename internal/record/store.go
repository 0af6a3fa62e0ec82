package record

import (
	"fmt"
	"os"
	"path/filepath"

	"media-catalog/internal/layout"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediakind"
	"media-catalog/internal/metrics"

	"github.com/google/uuid"
)

// Store owns the sidecar files of the catalog: create, load, update and
// delete semantics, including crash-safe cleanup of artifacts that cannot
// be deleted immediately.
type Store struct {
	layout  *layout.Layout
	codec   Codec
	janitor *Janitor
}

// NewStore creates a Store over the given layout. codec may be nil, in
// which case the JSON sidecar codec is used.
func NewStore(l *layout.Layout, codec Codec, janitor *Janitor) *Store {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Store{
		layout:  l,
		codec:   codec,
		janitor: janitor,
	}
}

// Layout returns the path layout the store persists into.
func (s *Store) Layout() *layout.Layout {
	return s.layout
}

// Janitor returns the deferred-deletion list.
func (s *Store) Janitor() *Janitor {
	return s.janitor
}

// withDerivedPaths recomputes the three derived path fields from the
// layout. Serialized paths are never trusted.
func (s *Store) withDerivedPaths(rec MediaRecord) MediaRecord {
	rec.MediaPath = s.layout.MediaPath(rec.ID, rec.Extension)
	rec.ThumbPath = s.layout.ThumbPath(rec.ID)
	if rec.Kind == mediakind.KindAudio {
		// Audio previews are a shared built-in graphic, not a per-item file
		rec.PreviewPath = ""
	} else {
		rec.PreviewPath = s.layout.ImagePath(rec.ID)
	}
	return rec
}

// Load reads and decodes one sidecar file.
func (s *Store) Load(sidecarPath string) (MediaRecord, error) {
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return MediaRecord{}, fmt.Errorf("failed to read sidecar %s: %w", sidecarPath, err)
	}

	rec, err := s.codec.Decode(data)
	if err != nil {
		return MediaRecord{}, fmt.Errorf("sidecar %s: %w", sidecarPath, err)
	}

	return s.withDerivedPaths(rec), nil
}

// LoadByID loads the record with the given id.
func (s *Store) LoadByID(id uuid.UUID) (MediaRecord, error) {
	return s.Load(s.layout.SidecarPath(id))
}

// Exists reports whether a sidecar exists for the given id.
func (s *Store) Exists(id uuid.UUID) bool {
	_, err := os.Stat(s.layout.SidecarPath(id))
	return err == nil
}

// List enumerates every record in the catalog. Sidecars that fail to
// parse are logged and skipped so one corrupt file cannot hide the rest
// of the library.
func (s *Store) List() ([]MediaRecord, error) {
	pattern := filepath.Join(s.layout.BaseDir(), "*."+layout.SidecarExtension)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate sidecars: %w", err)
	}

	records := make([]MediaRecord, 0, len(matches))
	for _, path := range matches {
		rec, err := s.Load(path)
		if err != nil {
			logging.Warn("Skipping unreadable sidecar %s: %v", path, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Create serializes a new record to its sidecar path.
func (s *Store) Create(rec MediaRecord) error {
	return s.write(rec)
}

// Update overwrites the record's sidecar. Updates are full overwrites,
// not patches.
func (s *Store) Update(rec MediaRecord) error {
	return s.write(rec)
}

// write serializes the record next to its sidecar and renames it into
// place, so a crash mid-write never leaves a truncated sidecar behind.
func (s *Store) write(rec MediaRecord) error {
	data, err := s.codec.Encode(rec)
	if err != nil {
		return err
	}

	path := s.layout.SidecarPath(rec.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write sidecar %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace sidecar %s: %w", path, err)
	}
	return nil
}

// Delete removes a record and its artifacts. The sidecar goes first so
// the catalog stops listing the item immediately; artifact deletions are
// best effort, with failures deferred to shutdown cleanup instead of
// surfacing to the caller.
func (s *Store) Delete(rec MediaRecord) error {
	sidecarPath := s.layout.SidecarPath(rec.ID)
	if err := os.Remove(sidecarPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete sidecar %s: %w", sidecarPath, err)
	}

	artifacts := []string{
		s.layout.MediaPath(rec.ID, rec.Extension),
		s.layout.ImagePath(rec.ID),
		s.layout.ThumbPath(rec.ID),
	}
	for _, path := range artifacts {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("artifact %s could not be deleted now: %v", path, err)
			s.janitor.Defer(path)
		}
	}
	return nil
}

// GetStats counts catalog items by kind for the metrics collector.
func (s *Store) GetStats() metrics.Stats {
	records, err := s.List()
	if err != nil {
		logging.Warn("stats enumeration failed: %v", err)
		return metrics.Stats{}
	}

	var stats metrics.Stats
	for _, rec := range records {
		switch rec.Kind {
		case mediakind.KindImage:
			stats.TotalImages++
		case mediakind.KindAudio:
			stats.TotalAudio++
		case mediakind.KindVideo:
			stats.TotalVideos++
		}
	}
	return stats
}
