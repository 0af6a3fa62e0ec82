package derive

import (
	"image"
	"image/color"
)

// Film-strip geometry, all derived from the thumbnail height so the
// decoration scales with the thumbnail size.
const (
	railDivisor = 7 // rail height = thumbnail height / railDivisor
	minRail     = 2
)

var (
	railColor = color.NRGBA{R: 16, G: 16, B: 16, A: 255}
	holeColor = color.NRGBA{R: 232, G: 232, B: 232, A: 255}
)

// DecorateAsFilm draws a film-strip overlay directly onto the thumbnail:
// a dark rail along the top and bottom edge, each with a row of evenly
// spaced perforation cut-outs. Purely cosmetic; never fails.
func DecorateAsFilm(thumb *image.NRGBA) {
	bounds := thumb.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rail := height / railDivisor
	if rail < minRail {
		rail = minRail
	}
	if rail*2 >= height {
		// Too small to decorate
		return
	}

	hole := rail / 2
	if hole < 1 {
		hole = 1
	}
	pitch := hole * 2
	holeTop := (rail - hole) / 2

	// Rails
	fillRect(thumb, 0, 0, width, rail)
	fillRect(thumb, 0, height-rail, width, height)

	// Perforations, phase-aligned on both rails
	for x := hole; x+hole <= width; x += pitch {
		fillRectColor(thumb, x, holeTop, x+hole, holeTop+hole, holeColor)
		fillRectColor(thumb, x, height-rail+holeTop, x+hole, height-rail+holeTop+hole, holeColor)
	}
}

func fillRect(img *image.NRGBA, x0, y0, x1, y1 int) {
	fillRectColor(img, x0, y0, x1, y1, railColor)
}

func fillRectColor(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	min := img.Bounds().Min
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetNRGBA(min.X+x, min.Y+y, c)
		}
	}
}
