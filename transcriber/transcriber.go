// Package transcriber turns captured audio into text.
package transcriber

import "errors"

// SampleRate is the only input rate the speech model accepts.
const SampleRate = 16000

// ErrBadSampleRate is returned when input is not 16 kHz.
var ErrBadSampleRate = errors.New("transcriber: expected 16 kHz input")

// Transcriber converts a flat mono sample buffer into text. The call is
// synchronous and may block for seconds; callers run it off any latency-
// sensitive path. Empty input returns "" without touching the model.
type Transcriber interface {
	Transcribe(samples []float32, sampleRate int) (string, error)
}
