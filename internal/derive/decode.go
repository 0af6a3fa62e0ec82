package derive

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"media-catalog/internal/logging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

// Decode reads and decodes an image file. Registered decoders are tried
// first; formats they reject (HEIC, AVIF) fall back to libvips when it is
// available.
func Decode(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an image from memory with the same fallback chain
// as Decode.
func DecodeBytes(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		logging.Debug("Decoded image format: %s", format)
		return img, nil
	}

	logging.Debug("Standard decode failed: %v, trying libvips fallback", err)

	img, vipsErr := decodeWithVips(data)
	if vipsErr == nil {
		return img, nil
	}

	return nil, fmt.Errorf("no decoder recognized the image: %w", err)
}

// DecodeConfig returns image dimensions without fully decoding the image.
func DecodeConfig(path string) (width, height int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}
	return config.Width, config.Height, nil
}

// SaveJPEG encodes img to path as JPEG.
func SaveJPEG(img image.Image, path string, quality int) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to save JPEG %s: %w", path, err)
	}
	return nil
}

// SavePNG encodes img to path as PNG.
func SavePNG(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save PNG %s: %w", path, err)
	}
	return nil
}
