package derive

import (
	"image"

	"github.com/disintegration/imaging"
)

// Thumbnail produces a uniformly scaled thumbnail of img that fits within
// targetWidth x targetHeight. The result is always NRGBA so later
// decoration can draw transparency. Images already within the bounds are
// never upscaled.
func Thumbnail(img image.Image, targetWidth, targetHeight int) *image.NRGBA {
	bounds := img.Bounds()
	if bounds.Dx() <= targetWidth && bounds.Dy() <= targetHeight {
		return imaging.Clone(img)
	}

	return imaging.Fit(img, targetWidth, targetHeight, imaging.Lanczos)
}
