package audio

import (
	"encoding/binary"
	"sync"
)

// Recorder accumulates captured samples between Start and Stop. The buffer
// and the recording flag share one lock so the device callback cannot append
// after Stop has begun draining.
type Recorder struct {
	dev Device

	mu        sync.Mutex
	recording bool
	buf       []float32
}

func NewRecorder(dev Device) *Recorder {
	r := &Recorder{dev: dev}
	dev.SetCallback(r.append)
	return r
}

// append runs on the device's delivery context. Frames arriving outside a
// recording window are dropped.
func (r *Recorder) append(data []byte, _ uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	for i := 0; i+1 < len(data); i += 2 {
		s := int16(binary.LittleEndian.Uint16(data[i:]))
		r.buf = append(r.buf, float32(s)/32768)
	}
}

// Start resets the buffer and begins capturing.
func (r *Recorder) Start() error {
	r.mu.Lock()
	r.buf = r.buf[:0]
	r.recording = true
	r.mu.Unlock()

	if err := r.dev.Start(); err != nil {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return err
	}
	return nil
}

// Stop halts capture and returns everything buffered since Start, flattened
// to one channel. The internal buffer is handed off, not copied.
func (r *Recorder) Stop() []float32 {
	r.mu.Lock()
	r.recording = false
	r.mu.Unlock()

	r.dev.Stop()

	r.mu.Lock()
	out := r.buf
	r.buf = nil
	r.mu.Unlock()
	return out
}

// Close releases the underlying device.
func (r *Recorder) Close() {
	r.dev.ClearCallback()
	r.dev.Close()
}
