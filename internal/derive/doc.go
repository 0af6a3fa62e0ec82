// Package derive generates the derived artifacts of a media item:
// orientation-corrected images, uniformly scaled thumbnails, film-strip
// decoration for video thumbnails, and the built-in audio preview
// graphic.
//
// Decoding goes through the registered Go decoders (stdlib plus
// golang.org/x/image formats) with a libvips fallback for formats they
// reject, such as HEIC and AVIF.
package derive
