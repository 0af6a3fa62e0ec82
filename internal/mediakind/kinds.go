package mediakind

// Kind classifies a catalog item by its primary artifact.
type Kind string

const (
	// KindImage represents a still image item.
	KindImage Kind = "IMAGE"
	// KindAudio represents an audio-only item.
	KindAudio Kind = "AUDIO"
	// KindVideo represents a video item.
	KindVideo Kind = "VIDEO"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindImage, KindAudio, KindVideo:
		return true
	}
	return false
}

// Format describes the container/codec family of an item in human terms.
type Format struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ImageMimeTypes maps decodable image MIME types to their canonical
// on-disk extension.
var ImageMimeTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
	"image/heic": "heic",
	"image/heif": "heif",
	"image/avif": "avif",
}

// AudioMimeTypes maps supported audio MIME types to their canonical
// on-disk extension.
var AudioMimeTypes = map[string]string{
	"audio/mpeg":   "mp3",
	"audio/mp4":    "m4a",
	"audio/aac":    "aac",
	"audio/ogg":    "ogg",
	"audio/flac":   "flac",
	"audio/x-flac": "flac",
	"audio/wav":    "wav",
	"audio/x-wav":  "wav",
	"audio/x-m4a":  "m4a",
	"audio/webm":   "weba",
	"audio/opus":   "opus",
}

// VideoMimeTypes maps supported video MIME types to their canonical
// on-disk extension.
var VideoMimeTypes = map[string]string{
	"video/mp4":        "mp4",
	"video/x-matroska": "mkv",
	"video/webm":       "webm",
	"video/quicktime":  "mov",
	"video/x-msvideo":  "avi",
	"video/mpeg":       "mpg",
	"video/x-m4v":      "m4v",
	"video/x-ms-wmv":   "wmv",
	"video/x-flv":      "flv",
	"video/3gpp":       "3gp",
	"video/mp2t":       "ts",
}

// excludedAudioMimeTypes lists audio/* types the encoder cannot process.
// MIDI and friends are sequenced music, not sampled audio.
var excludedAudioMimeTypes = map[string]bool{
	"audio/midi":   true,
	"audio/x-midi": true,
	"audio/mid":    true,
	"audio/rmid":   true,
}

// formats maps MIME types to their display descriptors.
var formats = map[string]Format{
	"image/jpeg":       {Name: "JPEG", Description: "JPEG image"},
	"image/png":        {Name: "PNG", Description: "Portable Network Graphics image"},
	"image/gif":        {Name: "GIF", Description: "GIF image"},
	"image/webp":       {Name: "WebP", Description: "WebP image"},
	"image/bmp":        {Name: "BMP", Description: "Windows bitmap image"},
	"image/tiff":       {Name: "TIFF", Description: "Tagged Image File Format image"},
	"image/heic":       {Name: "HEIC", Description: "High Efficiency Image Container image"},
	"image/heif":       {Name: "HEIF", Description: "High Efficiency Image Format image"},
	"image/avif":       {Name: "AVIF", Description: "AV1 Image File Format image"},
	"audio/mpeg":       {Name: "MP3", Description: "MPEG audio"},
	"audio/mp4":        {Name: "M4A", Description: "MPEG-4 audio"},
	"audio/x-m4a":      {Name: "M4A", Description: "MPEG-4 audio"},
	"audio/aac":        {Name: "AAC", Description: "Advanced Audio Coding audio"},
	"audio/ogg":        {Name: "OGG", Description: "Ogg audio"},
	"audio/flac":       {Name: "FLAC", Description: "Free Lossless Audio Codec audio"},
	"audio/x-flac":     {Name: "FLAC", Description: "Free Lossless Audio Codec audio"},
	"audio/wav":        {Name: "WAV", Description: "Waveform audio"},
	"audio/x-wav":      {Name: "WAV", Description: "Waveform audio"},
	"audio/webm":       {Name: "WebM", Description: "WebM audio"},
	"audio/opus":       {Name: "Opus", Description: "Opus audio"},
	"video/mp4":        {Name: "MP4", Description: "MPEG-4 video"},
	"video/x-matroska": {Name: "MKV", Description: "Matroska video"},
	"video/webm":       {Name: "WebM", Description: "WebM video"},
	"video/quicktime":  {Name: "MOV", Description: "QuickTime video"},
	"video/x-msvideo":  {Name: "AVI", Description: "Audio Video Interleave video"},
	"video/mpeg":       {Name: "MPEG", Description: "MPEG video"},
	"video/x-m4v":      {Name: "M4V", Description: "MPEG-4 video"},
	"video/x-ms-wmv":   {Name: "WMV", Description: "Windows Media video"},
	"video/x-flv":      {Name: "FLV", Description: "Flash video"},
	"video/3gpp":       {Name: "3GP", Description: "3GPP video"},
	"video/mp2t":       {Name: "TS", Description: "MPEG transport stream video"},
}

// FormatFor returns the display descriptor for a MIME type.
// Unknown types get a generic descriptor built from the MIME subtype.
func FormatFor(mimeType string) Format {
	if f, ok := formats[mimeType]; ok {
		return f
	}
	return Format{Name: mimeType, Description: mimeType}
}

// CanonicalExtension returns the on-disk extension the catalog uses for a
// MIME type. Returns "" for unknown types.
func CanonicalExtension(mimeType string) string {
	if ext, ok := ImageMimeTypes[mimeType]; ok {
		return ext
	}
	if ext, ok := AudioMimeTypes[mimeType]; ok {
		return ext
	}
	if ext, ok := VideoMimeTypes[mimeType]; ok {
		return ext
	}
	return ""
}
