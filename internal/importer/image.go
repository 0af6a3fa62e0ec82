package importer

import (
	"context"
	"os"
	"time"

	"media-catalog/internal/derive"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediakind"
	"media-catalog/internal/record"
	"media-catalog/internal/transcode"

	"github.com/google/uuid"
)

// ImageImporter imports still images. Images are never transcoded: the
// source bytes are copied verbatim (EXIF intact) and orientation is
// corrected in the derived preview and thumbnail.
type ImageImporter struct {
	base
}

// NewImageImporter creates an ImageImporter.
func NewImageImporter(store *record.Store, adapter *transcode.Adapter, config Config) *ImageImporter {
	return &ImageImporter{base{
		store:   store,
		layout:  store.Layout(),
		adapter: adapter,
		config:  config,
	}}
}

// Kind returns mediakind.KindImage.
func (imp *ImageImporter) Kind() mediakind.Kind {
	return mediakind.KindImage
}

// Supports accepts any MIME type the decoding facility can read.
func (imp *ImageImporter) Supports(mimeType string) bool {
	return mediakind.SupportsImage(mimeType)
}

// Import runs the image pipeline: copy, decode, orientation correction,
// sidecar, preview, thumbnail. Any failure rolls back all artifacts
// written in this attempt.
func (imp *ImageImporter) Import(ctx context.Context, sourcePath, name, mimeType string) (rec record.MediaRecord, err error) {
	start := time.Now()
	defer func() { imp.finish(mediakind.KindImage, start, err) }()

	id := uuid.New()
	rb := &rollback{}

	// COPY: images bypass the transcoder entirely
	target, ext, err := imp.acquire(ctx, mediakind.KindImage, KindOptions{}, rb, id, sourcePath, mimeType)
	if err != nil {
		return record.MediaRecord{}, err
	}

	// PROBE: decoding the copied file is the probe; the only failure
	// mode after a successful copy is an unrecognized format.
	data, readErr := os.ReadFile(target)
	if readErr != nil {
		rb.run(StepProbe)
		return record.MediaRecord{}, stepErr(StepProbe, readErr)
	}

	img, decErr := derive.DecodeBytes(data)
	if decErr != nil {
		rb.run(StepProbe)
		return record.MediaRecord{}, stepErr(StepProbe, ErrNoDecoderFound)
	}

	orientation := derive.OrientationOf(data)
	corrected := derive.CorrectOrientation(img, orientation)
	if orientation > 1 {
		logging.Debug("Corrected EXIF orientation %d for %s", orientation, name)
	}

	// BUILD_RECORD: dimensions are post-correction
	rec = imp.build(id, name, ext, mimeType, mediakind.KindImage, target)
	rec.Width = corrected.Bounds().Dx()
	rec.Height = corrected.Bounds().Dy()
	rec.PreviewPath = imp.layout.ImagePath(id)

	// WRITE_METADATA
	if err := imp.writeMetadata(rec, rb); err != nil {
		return record.MediaRecord{}, err
	}

	// WRITE_PREVIEW: the corrected image itself
	previewPath := imp.layout.ImagePath(id)
	rb.add(previewPath)
	if err := derive.SaveJPEG(corrected, previewPath, imp.config.JPEGQuality); err != nil {
		rb.run(StepPreview)
		return record.MediaRecord{}, stepErr(StepPreview, err)
	}

	// WRITE_THUMBNAIL
	thumbPath := imp.layout.ThumbPath(id)
	rb.add(thumbPath)
	thumb := derive.Thumbnail(corrected, imp.config.ThumbWidth, imp.config.ThumbHeight)
	if err := derive.SavePNG(thumb, thumbPath); err != nil {
		rb.run(StepThumbnail)
		return record.MediaRecord{}, stepErr(StepThumbnail, err)
	}

	logging.Info("Imported image %s as %s (%dx%d)", name, id, rec.Width, rec.Height)
	return rec, nil
}

var _ Importer = (*ImageImporter)(nil)
