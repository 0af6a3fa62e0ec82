package mediakind

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Sniff determines the MIME type of a file from its content.
// The extension is only consulted by the underlying detector as a
// tie-breaker; callers get a concrete type or an error.
func Sniff(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}

	// Strip parameters such as "; charset=utf-8"
	mime := mtype.String()
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime, nil
}

// SupportsImage reports whether the image importer can handle a MIME type.
// It accepts anything the decoding facility (stdlib, x/image, libvips
// fallback) can read.
func SupportsImage(mimeType string) bool {
	_, ok := ImageMimeTypes[mimeType]
	return ok
}

// SupportsAudio reports whether the audio importer can handle a MIME type.
// Any audio/* type is accepted except sequenced formats (MIDI family) the
// encoder cannot process.
func SupportsAudio(mimeType string) bool {
	if !strings.HasPrefix(mimeType, "audio/") {
		return false
	}
	return !excludedAudioMimeTypes[mimeType]
}

// SupportsVideo reports whether the video importer can handle a MIME type.
func SupportsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, "video/")
}

// Detect classifies a MIME type into a Kind.
//
// The precedence Image, then Audio, then Video is fixed: container formats
// overlap, and the first importer to claim a type wins. Returns false when
// no importer supports the type.
func Detect(mimeType string) (Kind, bool) {
	switch {
	case SupportsImage(mimeType):
		return KindImage, true
	case SupportsAudio(mimeType):
		return KindAudio, true
	case SupportsVideo(mimeType):
		return KindVideo, true
	}
	return "", false
}
