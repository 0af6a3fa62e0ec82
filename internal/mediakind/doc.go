// Package mediakind classifies media files by MIME type and maps them to
// catalog kinds (image, audio, video), canonical on-disk extensions, and
// human-readable format descriptors.
//
// Classification order is fixed: image, then audio, then video. The first
// importer that claims a MIME type wins.
package mediakind
