package derive

import (
	"errors"
	"image"

	"media-catalog/internal/logging"

	exif "github.com/dsoprea/go-exif/v3"
	"github.com/disintegration/imaging"
)

// OrientationAbsent is the sentinel for "no EXIF orientation tag". It is
// not an error; the image is used as decoded.
const OrientationAbsent = 0

const orientationTagID = 0x0112

// OrientationOf extracts the EXIF orientation tag (1..8) from raw image
// bytes. Returns OrientationAbsent when the image carries no EXIF block,
// no orientation tag, or an unparsable one.
func OrientationOf(data []byte) int {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if !errors.Is(err, exif.ErrNoExif) {
			logging.Debug("EXIF extraction failed: %v", err)
		}
		return OrientationAbsent
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		logging.Debug("EXIF parse failed: %v", err)
		return OrientationAbsent
	}

	for _, entry := range entries {
		if entry.TagId != orientationTagID {
			continue
		}
		if values, ok := entry.Value.([]uint16); ok && len(values) > 0 {
			o := int(values[0])
			if o >= 1 && o <= 8 {
				return o
			}
		}
		return OrientationAbsent
	}

	return OrientationAbsent
}

// CorrectOrientation applies the EXIF rotation/flip transform identified
// by orientation (1..8) so the pixel data is upright. OrientationAbsent
// and 1 are the identity.
func CorrectOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		// Rotate 90° clockwise
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		// Rotate 90° counter-clockwise
		return imaging.Rotate90(img)
	default:
		return img
	}
}
