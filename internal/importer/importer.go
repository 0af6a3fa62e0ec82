package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"media-catalog/internal/layout"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediakind"
	"media-catalog/internal/metrics"
	"media-catalog/internal/record"
	"media-catalog/internal/transcode"

	"github.com/google/uuid"
)

// KindOptions configures artifact acquisition for one media kind.
type KindOptions struct {
	// TranscodeEnabled turns on external encoding for sources whose
	// format differs from the target extension.
	TranscodeEnabled bool
	// TranscodeTemplate is the encoder command template.
	TranscodeTemplate string
	// TargetExtension is the extension transcoded artifacts are written
	// under (e.g. "mp3", "mp4").
	TargetExtension string
}

// Config carries the import pipeline settings. It is passed explicitly
// into every importer constructor; there is no global configuration.
type Config struct {
	Audio KindOptions
	Video KindOptions

	ThumbWidth  int
	ThumbHeight int
	JPEGQuality int
}

// DefaultConfig returns the pipeline defaults used when configuration
// does not override them.
func DefaultConfig() Config {
	return Config{
		Audio: KindOptions{
			TranscodeTemplate: transcode.DefaultAudioTemplate,
			TargetExtension:   "mp3",
		},
		Video: KindOptions{
			TranscodeTemplate: transcode.DefaultVideoTemplate,
			TargetExtension:   "mp4",
		},
		ThumbWidth:  100,
		ThumbHeight: 100,
		JPEGQuality: 85,
	}
}

// Importer imports one kind of media into the catalog.
type Importer interface {
	// Kind returns the kind this importer produces.
	Kind() mediakind.Kind
	// Supports reports whether this importer accepts a MIME type. It
	// never fails; unsupported types simply return false.
	Supports(mimeType string) bool
	// Import runs the full pipeline for one source file and returns the
	// persisted record. On failure the library is left exactly as it
	// was before the call.
	Import(ctx context.Context, sourcePath, name, mimeType string) (record.MediaRecord, error)
}

// Dispatcher routes a source file to the first importer that accepts it.
// Probe order is fixed (image, audio, video) because container formats
// overlap.
type Dispatcher struct {
	importers []Importer
}

// NewDispatcher creates a Dispatcher over the given importers, tried in
// order.
func NewDispatcher(importers ...Importer) *Dispatcher {
	return &Dispatcher{importers: importers}
}

// Import sniffs the source's MIME type and delegates to the first
// importer that supports it. Returns ErrUnsupportedSource when none does;
// nothing is written in that case.
func (d *Dispatcher) Import(ctx context.Context, sourcePath string) (record.MediaRecord, error) {
	mimeType, err := mediakind.Sniff(sourcePath)
	if err != nil {
		return record.MediaRecord{}, fmt.Errorf("failed to probe %s: %w", sourcePath, err)
	}

	name := filepath.Base(sourcePath)
	for _, imp := range d.importers {
		if imp.Supports(mimeType) {
			return imp.Import(ctx, sourcePath, name, mimeType)
		}
	}

	return record.MediaRecord{}, fmt.Errorf("%s (%s): %w", name, mimeType, ErrUnsupportedSource)
}

// shared plumbing for the three importer variants

type base struct {
	store   *record.Store
	layout  *layout.Layout
	adapter *transcode.Adapter
	config  Config
}

// acquire produces the primary artifact at the canonical media path:
// verbatim copy when transcoding is off or the source already matches the
// target extension, external encoding otherwise. The created file is
// registered on rb before any fallible work.
func (b *base) acquire(ctx context.Context, kind mediakind.Kind, opts KindOptions, rb *rollback, id uuid.UUID, sourcePath, mimeType string) (string, string, error) {
	sourceExt := mediakind.CanonicalExtension(mimeType)
	if sourceExt == "" {
		sourceExt = strings.TrimPrefix(strings.ToLower(filepath.Ext(sourcePath)), ".")
	}

	needsTranscode := opts.TranscodeEnabled && sourceExt != opts.TargetExtension
	ext := sourceExt
	if needsTranscode {
		ext = opts.TargetExtension
	}

	target := b.layout.MediaPath(id, ext)
	rb.add(target)

	if needsTranscode {
		if err := b.adapter.Run(ctx, strings.ToLower(string(kind)), opts.TranscodeTemplate, sourcePath, target); err != nil {
			rb.run(StepTranscode)
			return "", "", stepErr(StepTranscode, err)
		}
	} else {
		if err := copyFile(sourcePath, target); err != nil {
			rb.run(StepCopy)
			return "", "", stepErr(StepCopy, err)
		}
	}

	return target, ext, nil
}

// build populates the kind-independent record fields.
func (b *base) build(id uuid.UUID, name, ext, mimeType string, kind mediakind.Kind, targetPath string) record.MediaRecord {
	now := time.Now().UTC()
	return record.MediaRecord{
		ID:         id,
		Name:       name,
		Kind:       kind,
		Format:     mediakind.FormatFor(mimeType),
		Extension:  ext,
		MimeType:   mimeType,
		SizeBytes:  fileSize(targetPath),
		CreatedAt:  now,
		ModifiedAt: now,
		Tags:       []string{},
		MediaPath:  targetPath,
		ThumbPath:  b.layout.ThumbPath(id),
	}
}

// writeMetadata persists the sidecar, rolling back on failure.
func (b *base) writeMetadata(rec record.MediaRecord, rb *rollback) error {
	rb.add(b.layout.SidecarPath(rec.ID))
	if err := b.store.Create(rec); err != nil {
		rb.run(StepMetadata)
		return stepErr(StepMetadata, err)
	}
	return nil
}

func (b *base) finish(kind mediakind.Kind, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	k := strings.ToLower(string(kind))
	metrics.ImportsTotal.WithLabelValues(k, outcome).Inc()
	metrics.ImportDuration.WithLabelValues(k).Observe(time.Since(start).Seconds())
}

// copyFile copies source to target, fsyncing the result. A partially
// written target is removed by the caller's rollback log.
func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", source, err)
	}
	defer func() {
		if err := in.Close(); err != nil {
			logging.Warn("failed to close source %s: %v", source, err)
		}
	}()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create target %s: %w", target, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy to %s: %w", target, err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to sync %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", target, err)
	}
	return nil
}

// fileSize returns the size of path or record.SizeUnknown when it cannot
// be read.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		logging.Warn("could not stat %s: %v", path, err)
		return record.SizeUnknown
	}
	return info.Size()
}
