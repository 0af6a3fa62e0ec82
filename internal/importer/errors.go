package importer

import (
	"errors"
	"fmt"
)

// Sentinel errors of the import pipeline.
var (
	// ErrUnsupportedSource reports that no importer's format probe accepts
	// the input. Nothing has been written when it is returned.
	ErrUnsupportedSource = errors.New("no importer supports the source file")

	// ErrNoDecoderFound reports that no decoder recognized a copied image.
	ErrNoDecoderFound = errors.New("no image decoder recognized the file")

	// ErrNoAudioStream reports that a probed file carries no audio stream.
	ErrNoAudioStream = errors.New("no audio stream present")

	// ErrNoVideoStream reports that a probed file carries no video stream.
	ErrNoVideoStream = errors.New("no video stream present")
)

// Step identifies a pipeline step for error reporting and metrics.
type Step string

const (
	StepCopy      Step = "copy"
	StepTranscode Step = "transcode"
	StepProbe     Step = "probe"
	StepMetadata  Step = "metadata"
	StepPreview   Step = "preview"
	StepThumbnail Step = "thumbnail"
)

// StepError reports which pipeline step failed. The import has already
// been rolled back when a StepError reaches the caller.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("import step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step Step, err error) *StepError {
	return &StepError{Step: step, Err: err}
}
