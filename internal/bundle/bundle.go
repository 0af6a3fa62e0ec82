package bundle

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"sync"

	"media-catalog/internal/layout"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediakind"
	"media-catalog/internal/metrics"
	"media-catalog/internal/record"
	"media-catalog/internal/workers"

	"github.com/google/uuid"
)

// Sentinel errors of the package provider.
var (
	// ErrBundleIncomplete marks a candidate whose required artifact entries
	// are not all present in the archive. The candidate is skipped; others
	// in the same bundle proceed independently.
	ErrBundleIncomplete = errors.New("bundle candidate is missing a required artifact entry")

	// ErrUpdateRollbackFailed marks an update whose backup restoration
	// failed after a write error. The id's files are deleted entirely
	// rather than left as a mix of old and new artifacts.
	ErrUpdateRollbackFailed = errors.New("backup restoration failed, item files deleted")
)

// DefaultExportRoot prefixes every entry written by Export.
const DefaultExportRoot = "catalog"

// maxImportWorkers caps the apply pool regardless of CPU count; candidate
// application is dominated by disk writes.
const maxImportWorkers = 8

// Outcome classifies what happened to one bundle candidate.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ItemResult is the per-candidate result of a bundle import.
type ItemResult struct {
	ID      uuid.UUID
	Outcome Outcome
	Err     error
}

// Result aggregates a whole bundle import. A Result with failed or
// skipped items is not an error at the call level: candidates are
// independent.
type Result struct {
	Items []ItemResult
}

// Count returns how many items ended with the given outcome.
func (r Result) Count(outcome Outcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}

// Provider moves catalog items in and out as self-describing zip bundles.
// Imports are transactional per id: the candidate's artifact files land
// together or not at all, and updates of existing items back up and
// restore on failure.
type Provider struct {
	store      *record.Store
	layout     *layout.Layout
	codec      record.Codec
	exportRoot string
	locks      *keyedMutex
}

// NewProvider creates a Provider over the given store. codec may be nil,
// in which case the JSON sidecar codec is used.
func NewProvider(store *record.Store, codec record.Codec) *Provider {
	if codec == nil {
		codec = record.JSONCodec{}
	}
	return &Provider{
		store:      store,
		layout:     store.Layout(),
		codec:      codec,
		exportRoot: DefaultExportRoot,
		locks:      newKeyedMutex(),
	}
}

// Export writes the given records and their artifacts into a zip bundle.
// The sidecar, primary artifact and thumbnail are written per item, plus
// the preview for video items. Artifacts missing on disk (a degraded
// video without a preview) are logged and skipped; the sidecar and the
// primary artifact are mandatory.
func (p *Provider) Export(records []record.MediaRecord, w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, rec := range records {
		required := []struct {
			role layout.Role
			src  string
		}{
			{layout.RoleSidecar, p.layout.SidecarPath(rec.ID)},
			{layout.RoleMedia, p.layout.MediaPath(rec.ID, rec.Extension)},
		}
		optional := []struct {
			role layout.Role
			src  string
		}{
			{layout.RoleThumb, p.layout.ThumbPath(rec.ID)},
		}
		if rec.Kind == mediakind.KindVideo {
			optional = append(optional, struct {
				role layout.Role
				src  string
			}{layout.RolePreview, p.layout.ImagePath(rec.ID)})
		}

		for _, artifact := range required {
			name := layout.ExportPath(p.exportRoot, rec.ID, artifact.role, rec.Extension)
			if err := addFileEntry(zw, name, artifact.src); err != nil {
				_ = zw.Close()
				return fmt.Errorf("failed to export %s of %s: %w", artifact.role, rec.ID, err)
			}
		}
		for _, artifact := range optional {
			name := layout.ExportPath(p.exportRoot, rec.ID, artifact.role, rec.Extension)
			if err := addFileEntry(zw, name, artifact.src); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					logging.Warn("Skipping absent %s artifact of %s in export", artifact.role, rec.ID)
					continue
				}
				_ = zw.Close()
				return fmt.Errorf("failed to export %s of %s: %w", artifact.role, rec.ID, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize bundle: %w", err)
	}
	return nil
}

func addFileEntry(zw *zip.Writer, name, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			logging.Warn("failed to close %s: %v", src, err)
		}
	}()

	out, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	return err
}

// candidate is one sidecar discovered in the archive, with the entries
// that belong to it.
type candidate struct {
	rec     record.MediaRecord
	sidecar *zip.File
	root    string
}

// Import applies a bundle read from r. Phase one scans the archive for
// valid sidecar entries; phase two applies each candidate transactionally
// under a per-id lock, concurrently across candidates.
func (p *Provider) Import(ctx context.Context, r io.ReaderAt, size int64) (Result, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open bundle: %w", err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	var candidates []candidate
	for _, f := range zr.File {
		if path.Ext(f.Name) != "."+layout.SidecarExtension {
			continue
		}
		rec, err := p.decodeSidecarEntry(f)
		if err != nil {
			logging.Debug("Entry %s is not a catalog sidecar: %v", f.Name, err)
			continue
		}
		candidates = append(candidates, candidate{
			rec:     rec,
			sidecar: f,
			root:    path.Dir(f.Name),
		})
	}

	logging.Info("Bundle discovery: %d entries, %d import candidates", len(zr.File), len(candidates))

	results := make([]ItemResult, len(candidates))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for range workers.ForIO(maxImportWorkers) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.apply(candidates[i], entries)
			}
		}()
	}

dispatch:
	for i := range candidates {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(candidates); j++ {
				results[j] = ItemResult{ID: candidates[j].rec.ID, Outcome: OutcomeSkipped, Err: ctx.Err()}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	// Stable result order regardless of worker scheduling
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ID.String() < results[j].ID.String()
	})

	for _, item := range results {
		metrics.BundleItemsTotal.WithLabelValues(string(item.Outcome)).Inc()
		if item.Err != nil {
			logging.Warn("Bundle item %s %s: %v", item.ID, item.Outcome, item.Err)
		}
	}

	return Result{Items: results}, nil
}

// ImportFile applies a bundle stored on disk.
func (p *Provider) ImportFile(ctx context.Context, bundlePath string) (Result, error) {
	file, err := os.Open(bundlePath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open bundle %s: %w", bundlePath, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s: %v", bundlePath, err)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat bundle %s: %w", bundlePath, err)
	}
	return p.Import(ctx, file, info.Size())
}

func (p *Provider) decodeSidecarEntry(f *zip.File) (record.MediaRecord, error) {
	rc, err := f.Open()
	if err != nil {
		return record.MediaRecord{}, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			logging.Warn("failed to close bundle entry %s: %v", f.Name, err)
		}
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return record.MediaRecord{}, err
	}
	return p.codec.Decode(data)
}

// apply runs the transactional per-candidate import under the id's lock.
func (p *Provider) apply(c candidate, entries map[string]*zip.File) ItemResult {
	id := c.rec.ID
	key := id.String()
	p.locks.Lock(key)
	defer p.locks.Unlock(key)

	// Completeness: all required artifacts must be present by name before
	// anything touches the disk.
	plan, missing := p.buildPlan(c, entries)
	if missing != "" {
		return ItemResult{
			ID:      id,
			Outcome: OutcomeSkipped,
			Err:     fmt.Errorf("entry %s: %w", missing, ErrBundleIncomplete),
		}
	}

	isUpdate := p.store.Exists(id)

	var backups []backupPair
	if isUpdate {
		existing, err := p.store.LoadByID(id)
		if err != nil {
			return ItemResult{ID: id, Outcome: OutcomeFailed, Err: fmt.Errorf("existing item unreadable: %w", err)}
		}
		backups, err = p.backup(existing)
		if err != nil {
			p.restore(backups)
			return ItemResult{ID: id, Outcome: OutcomeFailed, Err: fmt.Errorf("failed to back up existing item: %w", err)}
		}
	}

	if err := p.extract(plan); err != nil {
		// All-or-nothing: remove what this apply wrote, then put the old
		// item back (update) or leave nothing (create).
		for _, step := range plan {
			if rmErr := os.Remove(step.target); rmErr != nil && !os.IsNotExist(rmErr) {
				logging.Warn("failed to remove partial artifact %s: %v", step.target, rmErr)
			}
		}
		if isUpdate {
			if restoreErr := p.restore(backups); restoreErr != nil {
				p.deleteAll(c.rec, backups)
				return ItemResult{
					ID:      id,
					Outcome: OutcomeFailed,
					Err:     fmt.Errorf("%w (after: %v)", ErrUpdateRollbackFailed, err),
				}
			}
		}
		return ItemResult{ID: id, Outcome: OutcomeFailed, Err: err}
	}

	p.discardBackups(backups)

	outcome := OutcomeCreated
	if isUpdate {
		outcome = OutcomeUpdated
	}
	logging.Info("Bundle item %s %s (%s)", id, outcome, c.rec.Kind)
	return ItemResult{ID: id, Outcome: outcome}
}

// extractStep maps one archive entry to its canonical target path.
type extractStep struct {
	entry  *zip.File
	target string
}

// buildPlan resolves the candidate's required entries against the archive.
// Returns the extraction plan, or the name of the first missing entry.
//
// The sidecar and media entries are always required, and image and audio
// items additionally require the thumbnail. Video derived assets come in
// a pair: a video exported after a failed frame extraction has neither
// thumbnail nor preview and imports without them, but a bundle carrying
// only one of the two is truncated, not degraded.
func (p *Provider) buildPlan(c candidate, entries map[string]*zip.File) ([]extractStep, string) {
	required := []struct {
		role   layout.Role
		target string
	}{
		{layout.RoleSidecar, p.layout.SidecarPath(c.rec.ID)},
		{layout.RoleMedia, p.layout.MediaPath(c.rec.ID, c.rec.Extension)},
	}
	if c.rec.Kind != mediakind.KindVideo {
		required = append(required, struct {
			role   layout.Role
			target string
		}{layout.RoleThumb, p.layout.ThumbPath(c.rec.ID)})
	}

	plan := make([]extractStep, 0, len(required)+2)
	for _, req := range required {
		name := entryName(c.root, c.rec.ID, req.role, c.rec.Extension)
		entry, ok := entries[name]
		if !ok {
			return nil, name
		}
		plan = append(plan, extractStep{entry: entry, target: req.target})
	}

	if c.rec.Kind == mediakind.KindVideo {
		thumbName := entryName(c.root, c.rec.ID, layout.RoleThumb, c.rec.Extension)
		previewName := entryName(c.root, c.rec.ID, layout.RolePreview, c.rec.Extension)
		thumb, hasThumb := entries[thumbName]
		preview, hasPreview := entries[previewName]
		switch {
		case hasThumb && hasPreview:
			plan = append(plan,
				extractStep{entry: preview, target: p.layout.ImagePath(c.rec.ID)},
				extractStep{entry: thumb, target: p.layout.ThumbPath(c.rec.ID)},
			)
		case hasThumb:
			return nil, previewName
		case hasPreview:
			return nil, thumbName
		}
	}
	return plan, ""
}

// entryName resolves an artifact's archive entry name relative to the
// candidate's own root, so bundles exported under any prefix import
// correctly.
func entryName(root string, id uuid.UUID, role layout.Role, ext string) string {
	switch role {
	case layout.RoleSidecar:
		return path.Join(root, id.String()+"."+layout.SidecarExtension)
	case layout.RoleMedia:
		return path.Join(root, layout.MediaDir, id.String()+"."+ext)
	case layout.RolePreview:
		return path.Join(root, layout.ImageDir, id.String()+"."+layout.PreviewExtension)
	case layout.RoleThumb:
		return path.Join(root, layout.ThumbDir, id.String()+"."+layout.ThumbExtension)
	}
	return ""
}

func (p *Provider) extract(plan []extractStep) error {
	for _, step := range plan {
		if err := extractEntry(step.entry, step.target); err != nil {
			return fmt.Errorf("failed to extract %s: %w", step.entry.Name, err)
		}
	}
	return nil
}

func extractEntry(entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			logging.Warn("failed to close bundle entry %s: %v", entry.Name, err)
		}
	}()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

type backupPair struct {
	original string
	backup   string
}

// backup moves the existing item's files into the import scratch
// directory. Absent optional artifacts (audio preview, degraded video
// thumbnail) are not an error.
func (p *Provider) backup(existing record.MediaRecord) ([]backupPair, error) {
	moves := []struct {
		role layout.Role
		src  string
		ext  string
	}{
		{layout.RoleSidecar, p.layout.SidecarPath(existing.ID), layout.SidecarExtension},
		{layout.RoleMedia, p.layout.MediaPath(existing.ID, existing.Extension), existing.Extension},
		{layout.RolePreview, p.layout.ImagePath(existing.ID), layout.PreviewExtension},
		{layout.RoleThumb, p.layout.ThumbPath(existing.ID), layout.ThumbExtension},
	}

	var backups []backupPair
	for _, move := range moves {
		dst := p.layout.BackupPath(existing.ID, move.role, move.ext)
		if err := os.Rename(move.src, dst); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return backups, err
		}
		backups = append(backups, backupPair{original: move.src, backup: dst})
	}
	return backups, nil
}

// restore moves backed-up files to their original locations. Single
// attempt: the caller escalates to full deletion when this fails.
func (p *Provider) restore(backups []backupPair) error {
	var failed error
	for _, pair := range backups {
		if err := os.Rename(pair.backup, pair.original); err != nil {
			logging.Error("failed to restore backup %s: %v", pair.backup, err)
			failed = err
		}
	}
	return failed
}

// discardBackups removes the scratch copies after a successful update.
func (p *Provider) discardBackups(backups []backupPair) {
	for _, pair := range backups {
		if err := os.Remove(pair.backup); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove backup %s: %v", pair.backup, err)
		}
	}
}

// deleteAll removes every file an id may occupy, including the taken
// backups. Last resort after a failed restoration: nothing is worse than
// a mix of old and new artifacts under one id.
//
// Backup paths come from the actual backup list, not recomputed from the
// new record: an update that changes extension keeps its old-extension
// media backup under a name the new record would never derive.
func (p *Provider) deleteAll(rec record.MediaRecord, backups []backupPair) {
	paths := p.layout.ArtifactPaths(rec.ID, rec.Extension)
	for _, pair := range backups {
		paths = append(paths, pair.backup, pair.original)
	}
	for _, target := range paths {
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			logging.Error("failed to delete %s while clearing inconsistent item %s: %v", target, rec.ID, err)
		}
	}
}
