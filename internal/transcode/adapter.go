package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// ErrInterrupted reports that the calling context was cancelled while
// waiting for a child process. The caller owns removal of any partially
// written target file.
var ErrInterrupted = errors.New("interrupted while waiting for external process")

// TranscodeError reports an encoder process failure: a non-zero exit or a
// spawn error. It carries the tail of the encoder's stderr.
type TranscodeError struct {
	Stderr string
	Err    error
}

func (e *TranscodeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("transcode failed: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("transcode failed: %v", e.Err)
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

// stderrTailLimit bounds how much encoder stderr ends up in errors.
const stderrTailLimit = 2048

// killWaitDelay bounds how long Wait blocks on the child's output pipes
// after cancellation kills it. Descendants of a killed command can keep
// the stderr pipe open well past the kill.
const killWaitDelay = 3 * time.Second

// Adapter runs an external encoder as a child process, blocking the
// calling goroutine until it exits. One invocation is one attempt: the
// adapter never retries.
type Adapter struct {
	encoderPath   string
	volNormClause string
}

// NewAdapter creates an Adapter for the given encoder binary. volNormClause
// is the template fragment substituted for {volnorm} when volume
// normalization is enabled; pass "" to disable.
func NewAdapter(encoderPath, volNormClause string) *Adapter {
	return &Adapter{
		encoderPath:   encoderPath,
		volNormClause: volNormClause,
	}
}

// Run expands the command template and executes it, blocking until the
// child exits.
//
// On a non-zero exit or spawn failure the result is a *TranscodeError.
// When ctx is cancelled while waiting, the child is killed and the error
// wraps ErrInterrupted; the caller must remove the partial target file.
func (a *Adapter) Run(ctx context.Context, kind, template, source, target string) error {
	argv, err := expandTemplate(template, map[string]string{
		TokenEncoder: a.encoderPath,
		TokenSource:  source,
		TokenTarget:  target,
		TokenVolNorm: a.volNormClause,
	})
	if err != nil {
		return &TranscodeError{Err: err}
	}

	logging.Debug("Running encoder: %v", argv)

	start := time.Now()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = killWaitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	metrics.TranscodeDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if runErr == nil {
		return nil
	}

	if ctx.Err() != nil {
		metrics.TranscodeFailuresTotal.WithLabelValues(kind, "interrupted").Inc()
		return fmt.Errorf("encoder for %s: %w", source, ErrInterrupted)
	}

	reason := "exit"
	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		reason = "spawn"
	}
	metrics.TranscodeFailuresTotal.WithLabelValues(kind, reason).Inc()

	logging.Error("Encoder failed for %s: %v", source, runErr)
	return &TranscodeError{Stderr: stderrTail(stderr.Bytes()), Err: runErr}
}

func stderrTail(b []byte) string {
	if len(b) > stderrTailLimit {
		b = b[len(b)-stderrTailLimit:]
	}
	return string(bytes.TrimSpace(b))
}
