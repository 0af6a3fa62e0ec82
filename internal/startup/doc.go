// Package startup handles application initialization, configuration
// loading, and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - LIBRARY_DIR: Path to the media library root (default: /library)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - FFMPEG_PATH / FFPROBE_PATH: External tool binaries (default: ffmpeg, ffprobe)
//   - TRANSCODE_AUDIO: Transcode imported audio to mp3 (default: true)
//   - TRANSCODE_VIDEO: Transcode imported video to mp4 (default: false)
//   - AUDIO_TRANSCODE_TEMPLATE / VIDEO_TRANSCODE_TEMPLATE /
//     FRAME_SAMPLE_TEMPLATE: Command templates with {encoder}, {source},
//     {target}, {volnorm} and {frames} tokens
//   - VOLNORM_CLAUSE: Optional loudness-normalization clause spliced into
//     the audio template (e.g. "-filter:a loudnorm")
//   - THUMB_WIDTH / THUMB_HEIGHT: Thumbnail bounding box (default: 100x100)
//   - JPEG_QUALITY: Preview encoding quality (default: 85)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - IMPORT_WORKERS: Bundle import worker pool override
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via
// [GetBuildInfo]: Version, Commit, BuildTime, GoVersion.
package startup
