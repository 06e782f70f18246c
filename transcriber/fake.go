package transcriber

import "sync"

// Fake returns canned text and records calls, for orchestrator tests.
type Fake struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls []FakeCall
}

type FakeCall struct {
	NumSamples int
	SampleRate int
}

func NewFake(text string, err error) *Fake {
	return &Fake{Text: text, Err: err}
}

func (f *Fake) Transcribe(samples []float32, sampleRate int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{NumSamples: len(samples), SampleRate: sampleRate})
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// Calls returns a snapshot of recorded invocations.
func (f *Fake) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}
