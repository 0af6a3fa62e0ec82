package importer

import (
	"context"
	"time"

	"media-catalog/internal/derive"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediakind"
	"media-catalog/internal/record"
	"media-catalog/internal/transcode"

	"github.com/google/uuid"
)

// VideoImporter imports video files. Frame extraction is a degraded
// failure mode: a video without an extractable frame still imports, just
// without preview and thumbnail artifacts.
type VideoImporter struct {
	base
	prober  *transcode.Prober
	sampler *transcode.FrameSampler
}

// NewVideoImporter creates a VideoImporter.
func NewVideoImporter(store *record.Store, adapter *transcode.Adapter, prober *transcode.Prober, sampler *transcode.FrameSampler, config Config) *VideoImporter {
	return &VideoImporter{
		base: base{
			store:   store,
			layout:  store.Layout(),
			adapter: adapter,
			config:  config,
		},
		prober:  prober,
		sampler: sampler,
	}
}

// Kind returns mediakind.KindVideo.
func (imp *VideoImporter) Kind() mediakind.Kind {
	return mediakind.KindVideo
}

// Supports accepts any video/* MIME type.
func (imp *VideoImporter) Supports(mimeType string) bool {
	return mediakind.SupportsVideo(mimeType)
}

// Import runs the video pipeline: copy or transcode, stream probe, frame
// sampling, sidecar, preview, film-decorated thumbnail. Any failure
// other than frame sampling rolls back all artifacts written in this
// attempt.
func (imp *VideoImporter) Import(ctx context.Context, sourcePath, name, mimeType string) (rec record.MediaRecord, err error) {
	start := time.Now()
	defer func() { imp.finish(mediakind.KindVideo, start, err) }()

	id := uuid.New()
	rb := &rollback{}

	// COPY_OR_TRANSCODE
	target, ext, err := imp.acquire(ctx, mediakind.KindVideo, imp.config.Video, rb, id, sourcePath, mimeType)
	if err != nil {
		return record.MediaRecord{}, err
	}

	// PROBE_METADATA: the target must carry a video stream
	info, probeErr := imp.prober.Probe(ctx, target)
	if probeErr != nil {
		rb.run(StepProbe)
		return record.MediaRecord{}, stepErr(StepProbe, probeErr)
	}
	if !info.HasVideo {
		rb.run(StepProbe)
		return record.MediaRecord{}, stepErr(StepProbe, ErrNoVideoStream)
	}

	// Frame extraction failure is absorbed: metadata is still valid
	// without a preview.
	frame, frameErr := imp.sampler.Extract(ctx, target)
	if frameErr != nil {
		logging.Warn("frame extraction failed for %s, importing without preview: %v", name, frameErr)
		frame = nil
	}

	// BUILD_RECORD
	rec = imp.build(id, name, ext, mimeType, mediakind.KindVideo, target)
	rec.Width = info.Width
	rec.Height = info.Height
	rec.DurationMillis = info.DurationMillis
	rec.AudioAvailable = info.HasAudio
	if frame != nil {
		rec.PreviewPath = imp.layout.ImagePath(id)
	}

	// WRITE_METADATA
	if err := imp.writeMetadata(rec, rb); err != nil {
		return record.MediaRecord{}, err
	}

	// WRITE_PREVIEW and WRITE_THUMBNAIL exist only when a frame was
	// extracted; the degraded import carries neither.
	if frame != nil {
		previewPath := imp.layout.ImagePath(id)
		rb.add(previewPath)
		if err := derive.SaveJPEG(frame, previewPath, imp.config.JPEGQuality); err != nil {
			rb.run(StepPreview)
			return record.MediaRecord{}, stepErr(StepPreview, err)
		}

		thumbPath := imp.layout.ThumbPath(id)
		rb.add(thumbPath)
		thumb := derive.Thumbnail(frame, imp.config.ThumbWidth, imp.config.ThumbHeight)
		derive.DecorateAsFilm(thumb)
		if err := derive.SavePNG(thumb, thumbPath); err != nil {
			rb.run(StepThumbnail)
			return record.MediaRecord{}, stepErr(StepThumbnail, err)
		}
	}

	logging.Info("Imported video %s as %s (%dx%d, %dms, audio=%v)",
		name, id, rec.Width, rec.Height, rec.DurationMillis, rec.AudioAvailable)
	return rec, nil
}

var _ Importer = (*VideoImporter)(nil)
