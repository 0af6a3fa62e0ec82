package record

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"media-catalog/internal/mediakind"

	"github.com/google/uuid"
)

func sampleRecord() MediaRecord {
	return MediaRecord{
		ID:             uuid.MustParse("5f0c54a2-7e33-44c1-9b56-000000000010"),
		Name:           "holiday.mp4",
		Kind:           mediakind.KindVideo,
		Format:         mediakind.Format{Name: "MP4", Description: "MPEG-4 video"},
		Extension:      "mp4",
		MimeType:       "video/mp4",
		Width:          1920,
		Height:         1080,
		DurationMillis: 93500,
		SizeBytes:      7_340_032,
		AudioAvailable: true,
		CreatedAt:      time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		ModifiedAt:     time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		Tags:           []string{"travel", "family"},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := JSONCodec{}
	original := sampleRecord()

	data, err := codec.Encode(original)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if decoded.ID != original.ID {
		t.Errorf("ID = %v, want %v", decoded.ID, original.ID)
	}
	if decoded.Kind != mediakind.KindVideo {
		t.Errorf("Kind = %v, want VIDEO", decoded.Kind)
	}
	if decoded.Width != 1920 || decoded.Height != 1080 {
		t.Errorf("dimensions = %dx%d, want 1920x1080", decoded.Width, decoded.Height)
	}
	if decoded.DurationMillis != 93500 {
		t.Errorf("DurationMillis = %d, want 93500", decoded.DurationMillis)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", decoded.CreatedAt, original.CreatedAt)
	}
	if !decoded.AudioAvailable {
		t.Error("AudioAvailable lost in round trip")
	}
	// Tags come back sorted
	if len(decoded.Tags) != 2 || decoded.Tags[0] != "family" || decoded.Tags[1] != "travel" {
		t.Errorf("Tags = %v, want [family travel]", decoded.Tags)
	}
}

func TestCodecPreservesTimestampPrecision(t *testing.T) {
	codec := JSONCodec{}

	// Records are built with time.Now(); persisting and reloading must
	// hand back the exact same instant, sub-second digits included.
	original := sampleRecord()
	original.CreatedAt = time.Date(2025, 6, 1, 10, 30, 0, 123456789, time.UTC)
	original.ModifiedAt = time.Date(2025, 6, 2, 9, 0, 0, 987000000, time.UTC)

	data, err := codec.Encode(original)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", decoded.CreatedAt, original.CreatedAt)
	}
	if !decoded.ModifiedAt.Equal(original.ModifiedAt) {
		t.Errorf("ModifiedAt = %v, want %v", decoded.ModifiedAt, original.ModifiedAt)
	}
}

func TestCodecWireFields(t *testing.T) {
	data, err := JSONCodec{}.Encode(sampleRecord())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("sidecar is not valid JSON: %v", err)
	}

	for _, field := range []string{
		"format", "version", "id", "name", "extension", "createdDate",
		"modifiedDate", "mimeType", "mediaType", "mediaFormat", "size",
		"width", "height", "length", "audioAvailable", "tags",
	} {
		if _, ok := doc[field]; !ok {
			t.Errorf("sidecar missing field %q", field)
		}
	}

	if doc["mediaType"] != "VIDEO" {
		t.Errorf("mediaType = %v, want VIDEO", doc["mediaType"])
	}
	if doc["format"] != SidecarFormat {
		t.Errorf("format = %v, want %v", doc["format"], SidecarFormat)
	}
	if !strings.HasSuffix(doc["createdDate"].(string), "Z") {
		t.Errorf("createdDate %v is not UTC RFC3339", doc["createdDate"])
	}
}

func TestCodecDecodeRejects(t *testing.T) {
	codec := JSONCodec{}

	tests := []struct {
		name  string
		input string
	}{
		{"not json", "byte soup"},
		{"wrong format", `{"format": "other/thing", "version": 1}`},
		{
			"future version",
			`{"format": "media-catalog/sidecar", "version": 99, "id": "5f0c54a2-7e33-44c1-9b56-000000000010"}`,
		},
		{"bad id", `{"format": "media-catalog/sidecar", "version": 1, "id": "nope"}`},
		{
			"bad media type",
			`{"format": "media-catalog/sidecar", "version": 1,
			  "id": "5f0c54a2-7e33-44c1-9b56-000000000010", "mediaType": "SLIDES",
			  "createdDate": "2025-06-01T10:30:00Z", "modifiedDate": "2025-06-01T10:30:00Z"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := codec.Decode([]byte(tt.input)); err == nil {
				t.Error("Decode() accepted invalid sidecar")
			}
		})
	}
}

func TestWithTags(t *testing.T) {
	rec := sampleRecord()
	before := rec.ModifiedAt

	updated := rec.WithTags([]string{"b", "a", "b", ""})

	if len(updated.Tags) != 2 || updated.Tags[0] != "a" || updated.Tags[1] != "b" {
		t.Errorf("Tags = %v, want deduplicated sorted [a b]", updated.Tags)
	}
	if !updated.ModifiedAt.After(before) {
		t.Error("WithTags did not refresh ModifiedAt")
	}
	// Original untouched
	if len(rec.Tags) != 2 || rec.Tags[0] != "travel" {
		t.Errorf("original record mutated: %v", rec.Tags)
	}

	if !updated.HasTag("a") || updated.HasTag("zzz") {
		t.Error("HasTag gave wrong answers")
	}
}
