package transcode

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

// fakeSamplerScript writes n tiny PNG frames matching the {target}
// pattern the sampler passes as $1.
func fakeSamplerScript(t *testing.T, n int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture frame: %v", err)
	}

	dir := t.TempDir()
	frame := filepath.Join(dir, "frame.png")
	if err := os.WriteFile(frame, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write fixture frame: %v", err)
	}

	script := filepath.Join(dir, "fakesampler")
	body := "#!/bin/sh\npattern=\"$1\"\ni=1\nwhile [ $i -le " +
		strconv.Itoa(n) + " ]; do\n" +
		"  out=$(printf \"$pattern\" $i)\n" +
		"  cp \"" + frame + "\" \"$out\"\n" +
		"  i=$((i+1))\ndone\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatalf("write fake sampler: %v", err)
	}
	return script
}

func TestFrameSamplerExtract(t *testing.T) {
	skipWithoutShell(t)

	script := fakeSamplerScript(t, 3)
	s := NewFrameSampler(script, `{encoder} "{target}"`)

	img, err := s.Extract(context.Background(), "movie.mp4")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if img == nil {
		t.Fatal("Extract() returned nil image without error")
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("frame width = %d, want 4", img.Bounds().Dx())
	}
}

func TestFrameSamplerFailure(t *testing.T) {
	skipWithoutShell(t)

	s := NewFrameSampler("/bin/sh", "{encoder} -c 'exit 1'")
	if _, err := s.Extract(context.Background(), "movie.mp4"); err == nil {
		t.Error("Extract() with failing sampler returned nil error")
	}
}

func TestFrameSamplerInterrupted(t *testing.T) {
	skipWithoutShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := NewFrameSampler("/bin/sh", "{encoder} -c 'sleep 30 & sleep 30'")
	start := time.Now()
	_, err := s.Extract(ctx, "movie.mp4")
	if time.Since(start) > killWaitDelay+2*time.Second {
		t.Fatal("Extract() blocked on a descendant holding the stderr pipe")
	}
	if !errors.Is(err, ErrInterrupted) {
		t.Errorf("Extract() error = %v, want ErrInterrupted", err)
	}
}

func TestFrameSamplerNoFrames(t *testing.T) {
	skipWithoutShell(t)

	// Succeeds but writes nothing
	s := NewFrameSampler("/bin/sh", "{encoder} -c 'true'")
	if _, err := s.Extract(context.Background(), "movie.mp4"); err == nil {
		t.Error("Extract() with no produced frames returned nil error")
	}
}
