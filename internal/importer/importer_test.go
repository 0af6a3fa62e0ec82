package importer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"media-catalog/internal/layout"
	"media-catalog/internal/record"
	"media-catalog/internal/transcode"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use /bin/sh")
	}
}

// testEnv wires a full pipeline over a temp library with fake external
// tools.
type testEnv struct {
	store   *record.Store
	layout  *layout.Layout
	adapter *transcode.Adapter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	l := layout.New(t.TempDir())
	if err := l.Initialize(); err != nil {
		t.Fatalf("layout init: %v", err)
	}
	return &testEnv{
		store:   record.NewStore(l, nil, record.NewJanitor()),
		layout:  l,
		adapter: transcode.NewAdapter("/bin/sh", ""),
	}
}

// snapshot returns the sorted relative paths of all files under the
// library, for byte-level atomicity checks.
func snapshot(t *testing.T, base string) []string {
	t.Helper()

	var paths []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(base, path)
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	sort.Strings(paths)
	return paths
}

func assertUnchanged(t *testing.T, base string, before []string) {
	t.Helper()

	after := snapshot(t, base)
	if len(after) != len(before) {
		t.Fatalf("library changed after failed import: before=%v after=%v", before, after)
	}
	for i := range after {
		if after[i] != before[i] {
			t.Fatalf("library changed after failed import: before=%v after=%v", before, after)
		}
	}
}

// fakeProbeScript fabricates an ffprobe that always prints payload.
func fakeProbeScript(t *testing.T, payload string) *transcode.Prober {
	t.Helper()

	dir := t.TempDir()
	script := filepath.Join(dir, "fakeprobe")
	body := "#!/bin/sh\ncat <<'EOF'\n" + payload + "\nEOF\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatalf("write fake probe: %v", err)
	}
	return transcode.NewProber(script)
}

// fakeSampler fabricates a frame sampler that writes one PNG frame, or
// fails when fail is set.
func fakeSampler(t *testing.T, fail bool) *transcode.FrameSampler {
	t.Helper()

	if fail {
		return transcode.NewFrameSampler("/bin/sh", "{encoder} -c 'exit 1'")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 64, 36))); err != nil {
		t.Fatalf("encode frame fixture: %v", err)
	}

	dir := t.TempDir()
	frame := filepath.Join(dir, "frame.png")
	if err := os.WriteFile(frame, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write frame fixture: %v", err)
	}

	script := filepath.Join(dir, "fakesampler")
	body := "#!/bin/sh\nout=$(printf \"$1\" 1)\ncp \"" + frame + "\" \"$out\"\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatalf("write fake sampler: %v", err)
	}
	return transcode.NewFrameSampler(script, `{encoder} "{target}"`)
}

// pngSource writes a decodable PNG source file outside the library.
func pngSource(t *testing.T, w, h int) string {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode source: %v", err)
	}

	path := filepath.Join(t.TempDir(), "source.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

// mp3Source writes bytes that sniff as audio/mpeg (ID3 header).
func mp3Source(t *testing.T) string {
	t.Helper()

	data := append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 256)...)
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

// mp4Source writes bytes that sniff as video/mp4 (ftyp box).
func mp4Source(t *testing.T) string {
	t.Helper()

	data := append([]byte("\x00\x00\x00\x20ftypisom\x00\x00\x02\x00isomiso2avc1mp41"), make([]byte, 256)...)
	path := filepath.Join(t.TempDir(), "movie.mp4")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

const videoProbeJSON = `{
	"streams": [
		{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "duration": "42.000"},
		{"codec_type": "audio", "codec_name": "aac", "duration": "42.000"}
	],
	"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "42.000"}
}`

const audioProbeJSON = `{
	"streams": [{"codec_type": "audio", "codec_name": "mp3", "duration": "180.000"}],
	"format": {"format_name": "mp3", "duration": "180.000"}
}`

const emptyProbeJSON = `{"streams": [], "format": {"format_name": "binary"}}`

func TestDispatcherUnsupportedSource(t *testing.T) {
	skipWithoutShell(t)

	env := newTestEnv(t)
	d := NewDispatcher(
		NewImageImporter(env.store, env.adapter, DefaultConfig()),
		NewAudioImporter(env.store, env.adapter, fakeProbeScript(t, audioProbeJSON), DefaultConfig()),
		NewVideoImporter(env.store, env.adapter, fakeProbeScript(t, videoProbeJSON), fakeSampler(t, false), DefaultConfig()),
	)

	source := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(source, []byte("plain text, not media"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	before := snapshot(t, env.layout.BaseDir())
	_, err := d.Import(context.Background(), source)
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("Import() error = %v, want ErrUnsupportedSource", err)
	}
	assertUnchanged(t, env.layout.BaseDir(), before)
}

func TestDispatcherRouting(t *testing.T) {
	skipWithoutShell(t)

	env := newTestEnv(t)
	d := NewDispatcher(
		NewImageImporter(env.store, env.adapter, DefaultConfig()),
		NewAudioImporter(env.store, env.adapter, fakeProbeScript(t, audioProbeJSON), DefaultConfig()),
	)

	rec, err := d.Import(context.Background(), pngSource(t, 10, 10))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if rec.Kind != "IMAGE" {
		t.Errorf("dispatched kind = %v, want IMAGE", rec.Kind)
	}
}

func TestIdempotentReimport(t *testing.T) {
	skipWithoutShell(t)

	env := newTestEnv(t)
	imp := NewImageImporter(env.store, env.adapter, DefaultConfig())
	source := pngSource(t, 10, 10)

	first, err := imp.Import(context.Background(), source, "a.png", "image/png")
	if err != nil {
		t.Fatalf("first Import() error: %v", err)
	}
	second, err := imp.Import(context.Background(), source, "a.png", "image/png")
	if err != nil {
		t.Fatalf("second Import() error: %v", err)
	}

	if first.ID == second.ID {
		t.Error("two imports of the same source produced the same id")
	}

	// The first record is untouched
	loaded, err := env.store.LoadByID(first.ID)
	if err != nil {
		t.Fatalf("first record vanished: %v", err)
	}
	if !loaded.CreatedAt.Equal(first.CreatedAt) {
		t.Error("first record mutated by second import")
	}
}

func TestTranscodeFailureRollsBack(t *testing.T) {
	skipWithoutShell(t)

	env := newTestEnv(t)
	config := DefaultConfig()
	config.Audio = KindOptions{
		TranscodeEnabled:  true,
		TranscodeTemplate: "{encoder} -c 'exit 7'",
		TargetExtension:   "xyz",
	}
	imp := NewAudioImporter(env.store, env.adapter, fakeProbeScript(t, audioProbeJSON), config)

	before := snapshot(t, env.layout.BaseDir())
	_, err := imp.Import(context.Background(), mp3Source(t), "song.mp3", "audio/mpeg")

	var sErr *StepError
	if !errors.As(err, &sErr) || sErr.Step != StepTranscode {
		t.Fatalf("Import() error = %v, want StepError{transcode}", err)
	}
	var tErr *transcode.TranscodeError
	if !errors.As(err, &tErr) {
		t.Errorf("transcode failure does not wrap *TranscodeError: %v", err)
	}
	assertUnchanged(t, env.layout.BaseDir(), before)
}

func TestTranscodeProducesTargetExtension(t *testing.T) {
	skipWithoutShell(t)

	env := newTestEnv(t)
	config := DefaultConfig()
	config.Audio = KindOptions{
		TranscodeEnabled:  true,
		TranscodeTemplate: `{encoder} -c 'cp "{source}" "{target}"'`,
		TargetExtension:   "xyz",
	}
	imp := NewAudioImporter(env.store, env.adapter, fakeProbeScript(t, audioProbeJSON), config)

	rec, err := imp.Import(context.Background(), mp3Source(t), "song.mp3", "audio/mpeg")
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if rec.Extension != "xyz" {
		t.Errorf("Extension = %q, want xyz (transcode target)", rec.Extension)
	}
	if _, err := os.Stat(env.layout.MediaPath(rec.ID, "xyz")); err != nil {
		t.Errorf("transcoded artifact missing: %v", err)
	}
}
