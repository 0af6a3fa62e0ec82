package record

import (
	"sort"
	"time"

	"media-catalog/internal/mediakind"

	"github.com/google/uuid"
)

// SizeUnknown is the sentinel stored when the primary artifact's size
// cannot be read.
const SizeUnknown int64 = -1

// MediaRecord is the persisted description of one media item. It is an
// immutable value: once created, only the tag set and the modification
// timestamp change, and always via a copying method.
//
// Width, Height and DurationMillis use 0 to mean "not applicable" (audio
// has no dimensions, images have no duration). A probing failure is a
// hard import error, never a silent zero.
type MediaRecord struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Kind           mediakind.Kind   `json:"kind"`
	Format         mediakind.Format `json:"format"`
	Extension      string           `json:"extension"`
	MimeType       string           `json:"mimeType"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	DurationMillis int64            `json:"durationMillis"`
	SizeBytes      int64            `json:"sizeBytes"`
	AudioAvailable bool             `json:"audioAvailable"`
	CreatedAt      time.Time        `json:"createdAt"`
	ModifiedAt     time.Time        `json:"modifiedAt"`
	Tags           []string         `json:"tags"`

	// Derived path fields, recomputed from the layout on load and never
	// persisted in the sidecar.
	MediaPath   string `json:"mediaPath,omitempty"`
	PreviewPath string `json:"previewPath,omitempty"`
	ThumbPath   string `json:"thumbPath,omitempty"`
}

// WithTags returns a copy of the record with the given tag set (sorted,
// deduplicated) and a refreshed modification timestamp.
func (r MediaRecord) WithTags(tags []string) MediaRecord {
	out := r
	out.Tags = normalizeTags(tags)
	out.ModifiedAt = time.Now().UTC()
	return out
}

// HasTag reports whether the record carries the given tag.
func (r MediaRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
