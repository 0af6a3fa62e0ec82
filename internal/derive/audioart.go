package derive

import (
	"image"
	"image/color"
)

// DefaultAudioArt draws the built-in preview graphic used for audio items
// without embedded cover art: a dark slate background with a light
// eighth-note glyph. Deterministic, no external assets.
func DefaultAudioArt(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	bg := color.NRGBA{R: 38, G: 42, B: 51, A: 255}
	fg := color.NRGBA{R: 214, G: 218, B: 226, A: 255}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, bg)
		}
	}

	// Note head: a filled circle in the lower-left of the center region
	headR := height / 10
	if headR < 2 {
		headR = 2
	}
	headCX := width/2 - headR
	headCY := height/2 + height/5
	fillCircle(img, headCX, headCY, headR, fg)

	// Stem: vertical bar rising from the right edge of the head
	stemW := headR / 2
	if stemW < 1 {
		stemW = 1
	}
	stemX := headCX + headR - stemW
	stemTop := height/2 - height/4
	fillRectColor(img, stemX, stemTop, stemX+stemW, headCY, fg)

	// Flag: short diagonal off the top of the stem
	for i := 0; i < headR*2; i++ {
		y := stemTop + i/2
		fillRectColor(img, stemX+stemW+i, y, stemX+stemW+i+1, y+stemW+1, fg)
	}

	return img
}

func fillCircle(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				img.SetNRGBA(cx+x, cy+y, c)
			}
		}
	}
}
