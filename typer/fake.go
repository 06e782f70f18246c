package typer

import "sync"

// Fake records typed text for tests.
type Fake struct {
	Err error

	mu    sync.Mutex
	typed []string
}

func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) Type(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.typed = append(f.typed, text)
	return nil
}

// Typed returns a snapshot of everything typed so far.
func (f *Fake) Typed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.typed))
	copy(out, f.typed)
	return out
}
