package derive

import (
	"image"
	"image/color"
	"testing"
)

func TestDecorateAsFilm(t *testing.T) {
	thumb := image.NewNRGBA(image.Rect(0, 0, 100, 56))
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < 56; y++ {
		for x := 0; x < 100; x++ {
			thumb.SetNRGBA(x, y, white)
		}
	}

	DecorateAsFilm(thumb)

	// Rail corners are dark
	if thumb.NRGBAAt(0, 0) != railColor {
		t.Errorf("top-left rail pixel = %v, want %v", thumb.NRGBAAt(0, 0), railColor)
	}
	if thumb.NRGBAAt(0, 55) != railColor {
		t.Errorf("bottom-left rail pixel = %v, want %v", thumb.NRGBAAt(0, 55), railColor)
	}

	// Center untouched
	if thumb.NRGBAAt(50, 28) != white {
		t.Errorf("center pixel = %v, want untouched white", thumb.NRGBAAt(50, 28))
	}

	// At least one perforation in the top rail
	rail := 56 / railDivisor
	found := false
	for x := 0; x < 100 && !found; x++ {
		for y := 0; y < rail && !found; y++ {
			if thumb.NRGBAAt(x, y) == holeColor {
				found = true
			}
		}
	}
	if !found {
		t.Error("no perforation cut-outs drawn in the top rail")
	}
}

func TestDecorateAsFilmTinyThumb(t *testing.T) {
	thumb := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	DecorateAsFilm(thumb) // must not panic or draw out of bounds
}

func TestDefaultAudioArt(t *testing.T) {
	art := DefaultAudioArt(320, 240)

	if art.Bounds().Dx() != 320 || art.Bounds().Dy() != 240 {
		t.Fatalf("art dimensions = %v, want 320x240", art.Bounds())
	}

	// Deterministic: two invocations are pixel-identical
	again := DefaultAudioArt(320, 240)
	for i := range art.Pix {
		if art.Pix[i] != again.Pix[i] {
			t.Fatal("DefaultAudioArt is not deterministic")
		}
	}

	// The glyph differs from the background somewhere
	bg := art.NRGBAAt(0, 0)
	varied := false
	for y := 0; y < 240 && !varied; y++ {
		for x := 0; x < 320 && !varied; x++ {
			if art.NRGBAAt(x, y) != bg {
				varied = true
			}
		}
	}
	if !varied {
		t.Error("DefaultAudioArt drew a uniform image")
	}
}
