package bundle

import (
	"context"
	"fmt"
	"io"
	"os"

	"media-catalog/internal/importer"
	"media-catalog/internal/layout"
	"media-catalog/internal/logging"
	"media-catalog/internal/record"
)

// RawProvider moves a single primary artifact in or out of the library
// without the bundle wrapper. Raw import is exactly a fresh import: the
// pipeline regenerates metadata, preview and thumbnail from the source.
type RawProvider struct {
	layout     *layout.Layout
	dispatcher *importer.Dispatcher
}

// NewRawProvider creates a RawProvider.
func NewRawProvider(l *layout.Layout, dispatcher *importer.Dispatcher) *RawProvider {
	return &RawProvider{layout: l, dispatcher: dispatcher}
}

// Export copies the record's primary artifact verbatim to w.
func (p *RawProvider) Export(rec record.MediaRecord, w io.Writer) error {
	src := p.layout.MediaPath(rec.ID, rec.Extension)
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open primary artifact %s: %w", src, err)
	}
	defer func() {
		if err := in.Close(); err != nil {
			logging.Warn("failed to close %s: %v", src, err)
		}
	}()

	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("failed to export primary artifact of %s: %w", rec.ID, err)
	}
	return nil
}

// Import runs the full import pipeline on a raw source file; never a
// bundle restore.
func (p *RawProvider) Import(ctx context.Context, sourcePath string) (record.MediaRecord, error) {
	return p.dispatcher.Import(ctx, sourcePath)
}
