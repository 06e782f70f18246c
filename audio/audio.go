// Package audio captures microphone input and buffers it for transcription.
package audio

// SampleRate is the fixed capture rate. The speech model operates at 16 kHz
// mono; capturing at that rate avoids resampling entirely.
const (
	SampleRate = 16000
	Channels   = 1
)

// DataCallback receives raw little-endian signed 16-bit PCM frames.
type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

// Device is one opened capture device. Start begins frame delivery to the
// installed callback; Stop halts delivery; Close releases the device.
type Device interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
}
