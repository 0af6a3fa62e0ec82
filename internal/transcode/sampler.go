package transcode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"media-catalog/internal/logging"

	"github.com/disintegration/imaging"
)

// candidateFrames is how many frames the sampler asks the encoder for.
// The representative frame is picked from the middle of the set to avoid
// black lead-in frames.
const candidateFrames = 5

// FrameSampler extracts a representative still frame from a video file
// using the same command-template mechanism as the Adapter.
type FrameSampler struct {
	encoderPath string
	template    string
}

// NewFrameSampler creates a FrameSampler. The template must contain
// {target} (a frame filename pattern such as frame-%03d.png) and usually
// {encoder}, {source} and {frames}.
func NewFrameSampler(encoderPath, template string) *FrameSampler {
	return &FrameSampler{
		encoderPath: encoderPath,
		template:    template,
	}
}

// Extract samples up to candidateFrames frames and returns one of them.
// Returns (nil, error) when the sampler process fails or produces nothing;
// callers treat a missing frame as a degraded result, not a failure.
func (s *FrameSampler) Extract(ctx context.Context, source string) (image.Image, error) {
	scratch, err := os.MkdirTemp("", "frame-sample-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create sampling directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logging.Warn("failed to remove sampling directory %s: %v", scratch, err)
		}
	}()

	pattern := filepath.Join(scratch, "frame-%03d.png")
	argv, err := expandTemplate(s.template, map[string]string{
		TokenEncoder: s.encoderPath,
		TokenSource:  source,
		TokenTarget:  pattern,
		TokenFrames:  strconv.Itoa(candidateFrames),
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("Sampling frames: %v", argv)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = killWaitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("frame sampling of %s: %w", source, ErrInterrupted)
		}
		return nil, fmt.Errorf("frame sampler failed for %s: %w - %s", source, err, stderrTail(stderr.Bytes()))
	}

	frames, err := filepath.Glob(filepath.Join(scratch, "frame-*.png"))
	if err != nil || len(frames) == 0 {
		return nil, fmt.Errorf("frame sampler produced no frames for %s", source)
	}
	sort.Strings(frames)

	// Middle frame: lead-in frames are often black or a fade-in.
	chosen := frames[len(frames)/2]

	img, err := imaging.Open(chosen)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sampled frame %s: %w", chosen, err)
	}

	logging.Debug("Sampled frame %s (%d candidates) for %s", chosen, len(frames), source)
	return img, nil
}
