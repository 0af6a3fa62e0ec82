package record

import (
	"encoding/json"
	"fmt"
	"time"

	"media-catalog/internal/mediakind"

	"github.com/google/uuid"
)

const (
	// SidecarFormat identifies the sidecar document family.
	SidecarFormat = "media-catalog/sidecar"
	// SidecarVersion is the current sidecar schema version.
	SidecarVersion = 1
)

// Codec serializes MediaRecords to and from sidecar documents. The import
// pipeline treats it as opaque; JSONCodec is the shipped implementation.
type Codec interface {
	Encode(rec MediaRecord) ([]byte, error)
	Decode(data []byte) (MediaRecord, error)
}

// sidecar is the wire shape of the metadata file.
type sidecar struct {
	Format         string           `json:"format"`
	Version        int              `json:"version"`
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Extension      string           `json:"extension"`
	CreatedDate    string           `json:"createdDate"`
	ModifiedDate   string           `json:"modifiedDate"`
	MimeType       string           `json:"mimeType"`
	MediaType      string           `json:"mediaType"`
	MediaFormat    mediakind.Format `json:"mediaFormat"`
	Size           int64            `json:"size"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	Length         int64            `json:"length"`
	AudioAvailable bool             `json:"audioAvailable"`
	Tags           []string         `json:"tags"`
}

// JSONCodec reads and writes the JSON sidecar format.
type JSONCodec struct{}

// Encode serializes rec to an indented sidecar document.
func (JSONCodec) Encode(rec MediaRecord) ([]byte, error) {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	doc := sidecar{
		Format:         SidecarFormat,
		Version:        SidecarVersion,
		ID:             rec.ID.String(),
		Name:           rec.Name,
		Extension:      rec.Extension,
		CreatedDate:    rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		ModifiedDate:   rec.ModifiedAt.UTC().Format(time.RFC3339Nano),
		MimeType:       rec.MimeType,
		MediaType:      string(rec.Kind),
		MediaFormat:    rec.Format,
		Size:           rec.SizeBytes,
		Width:          rec.Width,
		Height:         rec.Height,
		Length:         rec.DurationMillis,
		AudioAvailable: rec.AudioAvailable,
		Tags:           tags,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode sidecar for %s: %w", rec.ID, err)
	}
	return data, nil
}

// Decode parses a sidecar document. Path fields are left empty; the store
// recomputes them from the layout.
func (JSONCodec) Decode(data []byte) (MediaRecord, error) {
	var doc sidecar
	if err := json.Unmarshal(data, &doc); err != nil {
		return MediaRecord{}, fmt.Errorf("unparsable sidecar: %w", err)
	}

	if doc.Format != SidecarFormat {
		return MediaRecord{}, fmt.Errorf("not a media sidecar (format %q)", doc.Format)
	}
	if doc.Version > SidecarVersion {
		return MediaRecord{}, fmt.Errorf("sidecar version %d is newer than supported %d", doc.Version, SidecarVersion)
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return MediaRecord{}, fmt.Errorf("invalid sidecar id %q: %w", doc.ID, err)
	}

	kind := mediakind.Kind(doc.MediaType)
	if !kind.Valid() {
		return MediaRecord{}, fmt.Errorf("invalid sidecar media type %q", doc.MediaType)
	}

	created, err := time.Parse(time.RFC3339, doc.CreatedDate)
	if err != nil {
		return MediaRecord{}, fmt.Errorf("invalid sidecar createdDate %q: %w", doc.CreatedDate, err)
	}
	modified, err := time.Parse(time.RFC3339, doc.ModifiedDate)
	if err != nil {
		return MediaRecord{}, fmt.Errorf("invalid sidecar modifiedDate %q: %w", doc.ModifiedDate, err)
	}

	return MediaRecord{
		ID:             id,
		Name:           doc.Name,
		Kind:           kind,
		Format:         doc.MediaFormat,
		Extension:      doc.Extension,
		MimeType:       doc.MimeType,
		Width:          doc.Width,
		Height:         doc.Height,
		DurationMillis: doc.Length,
		SizeBytes:      doc.Size,
		AudioAvailable: doc.AudioAvailable,
		CreatedAt:      created,
		ModifiedAt:     modified,
		Tags:           normalizeTags(doc.Tags),
	}, nil
}
