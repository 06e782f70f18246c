package hotkey

// FakeSource drives a Listener from tests without touching OS input APIs.
type FakeSource struct {
	deliver func(pressed bool)
}

func NewFakeSource() *FakeSource {
	return &FakeSource{}
}

func (f *FakeSource) Start(deliver func(pressed bool)) error {
	f.deliver = deliver
	return nil
}

func (f *FakeSource) Stop() {}

// SimPress injects one raw press edge (key-repeat looks identical).
func (f *FakeSource) SimPress() {
	if f.deliver != nil {
		f.deliver(true)
	}
}

// SimRelease injects one raw release edge.
func (f *FakeSource) SimRelease() {
	if f.deliver != nil {
		f.deliver(false)
	}
}
