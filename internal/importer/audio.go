package importer

import (
	"context"
	"image"
	"os"
	"time"

	"media-catalog/internal/derive"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediakind"
	"media-catalog/internal/record"
	"media-catalog/internal/transcode"

	"github.com/dhowden/tag"
	"github.com/google/uuid"
)

// defaultArtSize is the canvas for the built-in audio graphic used when
// a track has no embedded cover art.
const defaultArtSize = 512

// AudioImporter imports audio files. Audio items store no per-item
// preview image; the thumbnail comes from embedded cover art when
// present, the built-in default graphic otherwise.
type AudioImporter struct {
	base
	prober *transcode.Prober
}

// NewAudioImporter creates an AudioImporter.
func NewAudioImporter(store *record.Store, adapter *transcode.Adapter, prober *transcode.Prober, config Config) *AudioImporter {
	return &AudioImporter{
		base: base{
			store:   store,
			layout:  store.Layout(),
			adapter: adapter,
			config:  config,
		},
		prober: prober,
	}
}

// Kind returns mediakind.KindAudio.
func (imp *AudioImporter) Kind() mediakind.Kind {
	return mediakind.KindAudio
}

// Supports accepts audio/* MIME types except the sequenced legacy
// formats the encoder cannot process.
func (imp *AudioImporter) Supports(mimeType string) bool {
	return mediakind.SupportsAudio(mimeType)
}

// Import runs the audio pipeline: copy or transcode, stream probe,
// sidecar, thumbnail. Any failure rolls back all artifacts written in
// this attempt.
func (imp *AudioImporter) Import(ctx context.Context, sourcePath, name, mimeType string) (rec record.MediaRecord, err error) {
	start := time.Now()
	defer func() { imp.finish(mediakind.KindAudio, start, err) }()

	id := uuid.New()
	rb := &rollback{}

	// COPY_OR_TRANSCODE
	target, ext, err := imp.acquire(ctx, mediakind.KindAudio, imp.config.Audio, rb, id, sourcePath, mimeType)
	if err != nil {
		return record.MediaRecord{}, err
	}

	// PROBE_METADATA: the target must carry an audio stream
	info, probeErr := imp.prober.Probe(ctx, target)
	if probeErr != nil {
		rb.run(StepProbe)
		return record.MediaRecord{}, stepErr(StepProbe, probeErr)
	}
	if !info.HasAudio {
		rb.run(StepProbe)
		return record.MediaRecord{}, stepErr(StepProbe, ErrNoAudioStream)
	}

	// BUILD_RECORD: audio has no dimensions, 0 means not applicable
	rec = imp.build(id, name, ext, mimeType, mediakind.KindAudio, target)
	rec.DurationMillis = info.DurationMillis
	rec.AudioAvailable = true

	cover := imp.coverArt(target)

	// WRITE_METADATA
	if err := imp.writeMetadata(rec, rb); err != nil {
		return record.MediaRecord{}, err
	}

	// WRITE_THUMBNAIL: no per-item preview is stored for audio; the
	// thumbnail source is the cover art or the built-in default graphic.
	art := cover
	if art == nil {
		art = derive.DefaultAudioArt(defaultArtSize, defaultArtSize)
	}

	thumbPath := imp.layout.ThumbPath(id)
	rb.add(thumbPath)
	thumb := derive.Thumbnail(art, imp.config.ThumbWidth, imp.config.ThumbHeight)
	if err := derive.SavePNG(thumb, thumbPath); err != nil {
		rb.run(StepThumbnail)
		return record.MediaRecord{}, stepErr(StepThumbnail, err)
	}

	logging.Info("Imported audio %s as %s (%dms)", name, id, rec.DurationMillis)
	return rec, nil
}

// coverArt extracts embedded artwork from the audio file. Missing tags
// or artwork are normal; failures here never fail the import.
func (imp *AudioImporter) coverArt(path string) image.Image {
	file, err := os.Open(path)
	if err != nil {
		logging.Debug("cover art open failed for %s: %v", path, err)
		return nil
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close %s: %v", path, err)
		}
	}()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		logging.Debug("no readable tags in %s: %v", path, err)
		return nil
	}

	pic := meta.Picture()
	if pic == nil {
		return nil
	}

	art, err := derive.DecodeBytes(pic.Data)
	if err != nil {
		logging.Debug("undecodable cover art in %s: %v", path, err)
		return nil
	}

	logging.Debug("Using embedded cover art from %s", path)
	return art
}

var _ Importer = (*AudioImporter)(nil)
