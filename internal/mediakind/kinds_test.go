package mediakind

import (
	"testing"
)

func TestKindValid(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		expected bool
	}{
		{"Image", KindImage, true},
		{"Audio", KindAudio, true},
		{"Video", KindVideo, true},
		{"Empty", Kind(""), false},
		{"Unknown", Kind("DOCUMENT"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.Valid(); got != tt.expected {
				t.Errorf("Valid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCanonicalExtension(t *testing.T) {
	tests := []struct {
		mime     string
		expected string
	}{
		{"image/jpeg", "jpg"},
		{"image/png", "png"},
		{"audio/mpeg", "mp3"},
		{"audio/x-flac", "flac"},
		{"video/mp4", "mp4"},
		{"video/x-matroska", "mkv"},
		{"application/pdf", ""},
		{"text/plain", ""},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			if got := CanonicalExtension(tt.mime); got != tt.expected {
				t.Errorf("CanonicalExtension(%q) = %q, want %q", tt.mime, got, tt.expected)
			}
		})
	}
}

func TestFormatFor(t *testing.T) {
	f := FormatFor("video/mp4")
	if f.Name != "MP4" {
		t.Errorf("FormatFor(video/mp4).Name = %q, want MP4", f.Name)
	}
	if f.Description != "MPEG-4 video" {
		t.Errorf("FormatFor(video/mp4).Description = %q, want MPEG-4 video", f.Description)
	}

	unknown := FormatFor("application/x-mystery")
	if unknown.Name != "application/x-mystery" {
		t.Errorf("unknown format name = %q, want the MIME type itself", unknown.Name)
	}
}
