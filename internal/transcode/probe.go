package transcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"media-catalog/internal/logging"
)

// ProbeError reports a stream-probe process failure. Absence of a stream
// is not a ProbeError; callers check StreamInfo for that.
type ProbeError struct {
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("stream probe failed: %v", e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// StreamInfo describes the streams of a media file as reported by the
// probe tool.
type StreamInfo struct {
	HasVideo       bool
	HasAudio       bool
	Width          int
	Height         int
	DurationMillis int64
	VideoCodec     string
	AudioCodec     string
	Container      string
}

// Prober extracts stream metadata from media files via ffprobe.
type Prober struct {
	probePath string
}

// NewProber creates a Prober using the given ffprobe binary.
func NewProber(probePath string) *Prober {
	return &Prober{probePath: probePath}
}

// ffprobe JSON output shapes, limited to the fields we read.
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

// Probe runs ffprobe on path and reports which streams are present along
// with dimensions, duration, and codec names.
//
// Process failures return a *ProbeError; cancellation while waiting wraps
// ErrInterrupted. A file with no recognizable streams is a successful
// probe with both HasVideo and HasAudio false.
func (p *Prober) Probe(ctx context.Context, path string) (*StreamInfo, error) {
	cmd := exec.CommandContext(ctx, p.probePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	cmd.WaitDelay = killWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("probe of %s: %w", path, ErrInterrupted)
		}
		return nil, &ProbeError{Err: fmt.Errorf("%w - %s", err, stderrTail(stderr.Bytes()))}
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, &ProbeError{Err: fmt.Errorf("unparsable probe output: %w", err)}
	}

	info := &StreamInfo{
		Container: firstToken(out.Format.FormatName),
	}

	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			// Some audio files carry an attached picture as a video
			// stream; a real video stream has dimensions.
			if s.Width == 0 || s.Height == 0 {
				continue
			}
			if !info.HasVideo {
				info.HasVideo = true
				info.Width = s.Width
				info.Height = s.Height
				info.VideoCodec = s.CodecName
			}
			if d := parseSeconds(s.Duration); d > info.DurationMillis {
				info.DurationMillis = d
			}
		case "audio":
			if !info.HasAudio {
				info.HasAudio = true
				info.AudioCodec = s.CodecName
			}
			if d := parseSeconds(s.Duration); d > info.DurationMillis {
				info.DurationMillis = d
			}
		}
	}

	if d := parseSeconds(out.Format.Duration); d > info.DurationMillis {
		info.DurationMillis = d
	}

	logging.Debug("Probed %s: video=%v audio=%v %dx%d %dms",
		path, info.HasVideo, info.HasAudio, info.Width, info.Height, info.DurationMillis)

	return info, nil
}

// parseSeconds converts an ffprobe duration string to milliseconds.
// Returns 0 for empty or malformed values.
func parseSeconds(s string) int64 {
	if s == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return int64(seconds * 1000)
}

// firstToken returns the first comma-separated token of an ffprobe
// format_name value ("mov,mp4,m4a,3gp,3g2,mj2" and friends).
func firstToken(s string) string {
	if idx := strings.Index(s, ","); idx != -1 {
		return s[:idx]
	}
	return s
}
