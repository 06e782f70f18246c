package audio

import (
	"encoding/binary"
	"sync"
)

// FakeDevice is a capture device driven manually from tests.
type FakeDevice struct {
	mu      sync.Mutex
	cb      DataCallback
	started bool
}

func NewFakeDevice() *FakeDevice {
	return &FakeDevice{}
}

func (f *FakeDevice) Start() error {
	f.mu.Lock()
	f.started = true
	f.mu.Unlock()
	return nil
}

func (f *FakeDevice) Stop() {
	f.mu.Lock()
	f.started = false
	f.mu.Unlock()
}

func (f *FakeDevice) Close() {}

func (f *FakeDevice) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeDevice) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

// Feed delivers raw PCM16 bytes as if captured. Dropped when not started.
func (f *FakeDevice) Feed(data []byte) {
	f.mu.Lock()
	cb := f.cb
	started := f.started
	f.mu.Unlock()
	if cb != nil && started {
		cb(data, uint32(len(data)/2))
	}
}

// FeedSeconds delivers the given duration of constant-amplitude audio.
func (f *FakeDevice) FeedSeconds(seconds float64) {
	frames := int(seconds * SampleRate)
	data := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(8192)))
	}
	f.Feed(data)
}
