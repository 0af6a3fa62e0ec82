package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"media-catalog/internal/layout"
	"media-catalog/internal/mediakind"
	"media-catalog/internal/record"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *record.Store {
	t.Helper()

	l := layout.New(t.TempDir())
	if err := l.Initialize(); err != nil {
		t.Fatalf("layout init: %v", err)
	}
	return record.NewStore(l, nil, record.NewJanitor())
}

// seedItem creates a catalog item with distinguishable artifact contents.
func seedItem(t *testing.T, store *record.Store, kind mediakind.Kind, ext string, marker string) record.MediaRecord {
	t.Helper()

	l := store.Layout()
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	rec := record.MediaRecord{
		ID:         uuid.New(),
		Name:       "item-" + marker + "." + ext,
		Kind:       kind,
		Format:     mediakind.Format{Name: string(kind), Description: "test format"},
		Extension:  ext,
		MimeType:   "application/octet-stream",
		SizeBytes:  int64(len(marker)),
		CreatedAt:  now,
		ModifiedAt: now,
		Tags:       []string{},
	}
	if kind == mediakind.KindVideo {
		rec.Width = 1920
		rec.Height = 1080
		rec.DurationMillis = 42000
		rec.AudioAvailable = true
	}

	if err := store.Create(rec); err != nil {
		t.Fatalf("seed sidecar: %v", err)
	}
	writeArtifact(t, l.MediaPath(rec.ID, ext), "media-"+marker)
	writeArtifact(t, l.ThumbPath(rec.ID), "thumb-"+marker)
	if kind == mediakind.KindVideo {
		writeArtifact(t, l.ImagePath(rec.ID), "preview-"+marker)
	}
	return rec
}

func writeArtifact(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write artifact %s: %v", path, err)
	}
}

func readArtifact(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact %s: %v", path, err)
	}
	return string(data)
}

func TestBundleRoundTrip(t *testing.T) {
	source := newTestStore(t)
	img := seedItem(t, source, mediakind.KindImage, "png", "img")
	vid := seedItem(t, source, mediakind.KindVideo, "mp4", "vid")

	var buf bytes.Buffer
	if err := NewProvider(source, nil).Export([]record.MediaRecord{img, vid}, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	target := newTestStore(t)
	result, err := NewProvider(target, nil).Import(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	if got := result.Count(OutcomeCreated); got != 2 {
		t.Fatalf("created = %d, want 2 (items: %+v)", got, result.Items)
	}

	for _, want := range []record.MediaRecord{img, vid} {
		got, err := target.LoadByID(want.ID)
		if err != nil {
			t.Fatalf("imported record %s missing: %v", want.ID, err)
		}
		if got.Name != want.Name || got.Kind != want.Kind || got.Extension != want.Extension {
			t.Errorf("record %s = %+v, want %+v", want.ID, got, want)
		}
		if got.Width != want.Width || got.DurationMillis != want.DurationMillis {
			t.Errorf("record %s metadata drifted: %+v", want.ID, got)
		}
	}

	tl := target.Layout()
	if got := readArtifact(t, tl.MediaPath(img.ID, "png")); got != "media-img" {
		t.Errorf("image media artifact = %q", got)
	}
	if got := readArtifact(t, tl.ImagePath(vid.ID)); got != "preview-vid" {
		t.Errorf("video preview artifact = %q", got)
	}
	if got := readArtifact(t, tl.ThumbPath(vid.ID)); got != "thumb-vid" {
		t.Errorf("video thumb artifact = %q", got)
	}
}

func TestBundleRoundTripDegradedVideo(t *testing.T) {
	source := newTestStore(t)
	vid := seedItem(t, source, mediakind.KindVideo, "mp4", "degraded")

	// A video imported after failed frame extraction has neither preview
	// nor thumbnail on disk.
	for _, path := range []string{
		source.Layout().ThumbPath(vid.ID),
		source.Layout().ImagePath(vid.ID),
	} {
		if err := os.Remove(path); err != nil {
			t.Fatalf("remove artifact: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := NewProvider(source, nil).Export([]record.MediaRecord{vid}, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	target := newTestStore(t)
	result, err := NewProvider(target, nil).Import(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if got := result.Count(OutcomeCreated); got != 1 {
		t.Fatalf("created = %d, want 1 (items: %+v)", got, result.Items)
	}

	if _, err := target.LoadByID(vid.ID); err != nil {
		t.Fatalf("imported record missing: %v", err)
	}
	tl := target.Layout()
	if got := readArtifact(t, tl.MediaPath(vid.ID, "mp4")); got != "media-degraded" {
		t.Errorf("media artifact = %q, want media-degraded", got)
	}
	for _, path := range []string{tl.ThumbPath(vid.ID), tl.ImagePath(vid.ID)} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("degraded import materialized %s (stat err = %v)", path, err)
		}
	}
}

func TestImportVideoMissingOnlyPreviewIsIncomplete(t *testing.T) {
	source := newTestStore(t)
	vid := seedItem(t, source, mediakind.KindVideo, "mp4", "trunc")

	var buf bytes.Buffer
	if err := NewProvider(source, nil).Export([]record.MediaRecord{vid}, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	// Thumbnail present, preview missing: a truncated bundle, not a
	// degraded item.
	pruned := rewriteBundle(t, buf.Bytes(), func(name string) bool {
		return name != entryName(DefaultExportRoot, vid.ID, layout.RolePreview, "mp4")
	})

	target := newTestStore(t)
	result, err := NewProvider(target, nil).Import(context.Background(), bytes.NewReader(pruned), int64(len(pruned)))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if got := result.Count(OutcomeSkipped); got != 1 {
		t.Fatalf("skipped = %d, want 1 (items: %+v)", got, result.Items)
	}
	if !errors.Is(result.Items[0].Err, ErrBundleIncomplete) {
		t.Errorf("error = %v, want ErrBundleIncomplete", result.Items[0].Err)
	}
	if target.Exists(vid.ID) {
		t.Error("truncated candidate was imported")
	}
}

func TestImportSkipsIncompleteCandidateIndependently(t *testing.T) {
	source := newTestStore(t)
	complete := seedItem(t, source, mediakind.KindImage, "png", "ok")
	broken := seedItem(t, source, mediakind.KindImage, "png", "broken")

	var buf bytes.Buffer
	if err := NewProvider(source, nil).Export([]record.MediaRecord{complete, broken}, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	// Rewrite the bundle without the broken item's thumbnail entry.
	pruned := rewriteBundle(t, buf.Bytes(), func(name string) bool {
		return name != entryName(DefaultExportRoot, broken.ID, layout.RoleThumb, "png")
	})

	target := newTestStore(t)
	result, err := NewProvider(target, nil).Import(context.Background(), bytes.NewReader(pruned), int64(len(pruned)))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	if got := result.Count(OutcomeCreated); got != 1 {
		t.Errorf("created = %d, want 1", got)
	}
	if got := result.Count(OutcomeSkipped); got != 1 {
		t.Errorf("skipped = %d, want 1", got)
	}
	for _, item := range result.Items {
		if item.ID == broken.ID && !errors.Is(item.Err, ErrBundleIncomplete) {
			t.Errorf("broken item error = %v, want ErrBundleIncomplete", item.Err)
		}
	}

	if !target.Exists(complete.ID) {
		t.Error("complete candidate was not imported")
	}
	if target.Exists(broken.ID) {
		t.Error("incomplete candidate was partially imported")
	}
	// Nothing of the skipped item hit the disk
	if _, err := os.Stat(target.Layout().MediaPath(broken.ID, "png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("incomplete candidate left a media artifact (stat err = %v)", err)
	}
}

func TestImportUpdateBacksUpAndRestoresOnFailure(t *testing.T) {
	store := newTestStore(t)
	existing := seedItem(t, store, mediakind.KindImage, "png", "old")

	// A bundle updating the same id, whose thumbnail entry fails checksum
	// verification mid-extraction. Plan order writes it last, after the
	// sidecar and media entries have already landed.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	sidecar, err := os.ReadFile(store.Layout().SidecarPath(existing.ID))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	addEntry(t, zw, entryName(DefaultExportRoot, existing.ID, layout.RoleSidecar, "png"), sidecar)
	addEntry(t, zw, entryName(DefaultExportRoot, existing.ID, layout.RoleMedia, "png"), []byte("media-new"))
	addCorruptEntry(t, zw, entryName(DefaultExportRoot, existing.ID, layout.RoleThumb, "png"))
	if err := zw.Close(); err != nil {
		t.Fatalf("close bundle: %v", err)
	}

	result, err := NewProvider(store, nil).Import(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	if got := result.Count(OutcomeFailed); got != 1 {
		t.Fatalf("failed = %d, want 1 (items: %+v)", got, result.Items)
	}

	// The old item is intact, byte for byte.
	l := store.Layout()
	if got := readArtifact(t, l.MediaPath(existing.ID, "png")); got != "media-old" {
		t.Errorf("media artifact after rollback = %q, want media-old", got)
	}
	if got := readArtifact(t, l.ThumbPath(existing.ID)); got != "thumb-old" {
		t.Errorf("thumb artifact after rollback = %q, want thumb-old", got)
	}
	if _, err := store.LoadByID(existing.ID); err != nil {
		t.Errorf("sidecar unreadable after rollback: %v", err)
	}

	// The scratch directory holds no leftover backups.
	leftovers, err := filepath.Glob(filepath.Join(l.ImportScratchDir(), "*"))
	if err != nil {
		t.Fatalf("glob scratch: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("scratch directory not empty after rollback: %v", leftovers)
	}
}

func TestImportUpdateReplacesExistingItem(t *testing.T) {
	source := newTestStore(t)
	item := seedItem(t, source, mediakind.KindImage, "png", "new")

	var buf bytes.Buffer
	if err := NewProvider(source, nil).Export([]record.MediaRecord{item}, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	// Target library already holds the same id with different contents.
	target := newTestStore(t)
	old := item
	old.Name = "stale.png"
	if err := target.Create(old); err != nil {
		t.Fatalf("seed target sidecar: %v", err)
	}
	writeArtifact(t, target.Layout().MediaPath(item.ID, "png"), "media-stale")
	writeArtifact(t, target.Layout().ThumbPath(item.ID), "thumb-stale")

	result, err := NewProvider(target, nil).Import(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	if got := result.Count(OutcomeUpdated); got != 1 {
		t.Fatalf("updated = %d, want 1 (items: %+v)", got, result.Items)
	}

	got, err := target.LoadByID(item.ID)
	if err != nil {
		t.Fatalf("load updated record: %v", err)
	}
	if got.Name != item.Name {
		t.Errorf("Name = %q, want %q", got.Name, item.Name)
	}
	if content := readArtifact(t, target.Layout().MediaPath(item.ID, "png")); content != "media-new" {
		t.Errorf("media artifact = %q, want media-new", content)
	}

	leftovers, _ := filepath.Glob(filepath.Join(target.Layout().ImportScratchDir(), "*"))
	if len(leftovers) != 0 {
		t.Errorf("backups not discarded after successful update: %v", leftovers)
	}
}

func TestDeleteAllClearsOldExtensionBackups(t *testing.T) {
	store := newTestStore(t)
	existing := seedItem(t, store, mediakind.KindImage, "png", "old")

	p := NewProvider(store, nil)
	backups, err := p.backup(existing)
	if err != nil {
		t.Fatalf("backup() error: %v", err)
	}

	// The escalation path runs with the incoming record, which may carry
	// a different extension than the backed-up item.
	incoming := existing
	incoming.Extension = "jpg"
	p.deleteAll(incoming, backups)

	l := store.Layout()
	leftovers, err := filepath.Glob(filepath.Join(l.ImportScratchDir(), "*"))
	if err != nil {
		t.Fatalf("glob scratch: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("old-extension backups stranded in scratch: %v", leftovers)
	}
	if _, err := os.Stat(l.MediaPath(existing.ID, "png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("old media artifact survived escalation (stat err = %v)", err)
	}
	if store.Exists(existing.ID) {
		t.Error("sidecar survived escalation")
	}
}

func TestImportIgnoresForeignJSONEntries(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	addEntry(t, zw, "manifest.json", []byte(`{"hello": "world"}`))
	addEntry(t, zw, "readme.txt", []byte("not media"))
	if err := zw.Close(); err != nil {
		t.Fatalf("close bundle: %v", err)
	}

	store := newTestStore(t)
	result, err := NewProvider(store, nil).Import(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("items = %+v, want none for a bundle without sidecars", result.Items)
	}
}

func TestRawProviderExportsVerbatim(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, mediakind.KindImage, "png", "raw")

	var buf bytes.Buffer
	raw := NewRawProvider(store.Layout(), nil)
	if err := raw.Export(item, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if buf.String() != "media-raw" {
		t.Errorf("raw export = %q, want media-raw", buf.String())
	}
}

// rewriteBundle copies a zip, keeping only entries keep() accepts.
func rewriteBundle(t *testing.T, data []byte, keep func(name string) bool) []byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open bundle for rewrite: %v", err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, f := range zr.File {
		if !keep(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatalf("create entry %s: %v", f.Name, err)
		}
		if _, err := io.Copy(w, rc); err != nil {
			t.Fatalf("copy entry %s: %v", f.Name, err)
		}
		rc.Close()
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close rewritten bundle: %v", err)
	}
	return out.Bytes()
}

func addEntry(t *testing.T, zw *zip.Writer, name string, content []byte) {
	t.Helper()
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("create entry %s: %v", name, err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("write entry %s: %v", name, err)
	}
}

// addCorruptEntry writes a stored entry whose declared CRC32 does not
// match its bytes, so reading it fails checksum verification.
func addCorruptEntry(t *testing.T, zw *zip.Writer, name string) {
	t.Helper()

	content := []byte("corrupted-thumbnail")
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               name,
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE([]byte("something else")),
		CompressedSize64:   uint64(len(content)),
		UncompressedSize64: uint64(len(content)),
	})
	if err != nil {
		t.Fatalf("create corrupt entry %s: %v", name, err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("write corrupt entry %s: %v", name, err)
	}
}
