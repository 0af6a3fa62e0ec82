// Package transcode wraps the external encoder and stream prober used by
// the import pipeline.
//
// It provides:
//   - Adapter: runs an encoder command built from a configurable template,
//     blocking until the child process exits
//   - Prober: extracts stream metadata (codecs, dimensions, duration)
//   - FrameSampler: extracts a representative still frame from a video
//
// Commands are described by templates with substitution tokens
// ({encoder}, {source}, {target}, {volnorm}, {frames}); the binaries are
// collaborator configuration, typically ffmpeg and ffprobe on PATH.
//
// Every invocation is a single attempt. Process failures surface as
// *TranscodeError or *ProbeError; cancellation while waiting surfaces as
// ErrInterrupted.
package transcode
