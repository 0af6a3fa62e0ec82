// Package importer runs the media import pipeline: acquire the primary
// artifact (verbatim copy or external transcode), probe it, build the
// metadata record, and persist sidecar, preview and thumbnail.
//
// The pipeline is linear with rollback branches:
//
//	COPY_OR_TRANSCODE -> PROBE_METADATA -> BUILD_RECORD ->
//	WRITE_METADATA -> WRITE_PREVIEW -> WRITE_THUMBNAIL
//
// Every step that creates a file registers an undo action; any failure
// runs the accumulated undo log so a failed import leaves the library
// byte-identical to its state before the attempt.
//
// Three importer variants share this shape with kind-specific bodies;
// the Dispatcher selects one by MIME type in fixed order (image, audio,
// video).
package importer
