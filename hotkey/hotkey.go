// Package hotkey delivers debounced press/release edges for one global key.
//
// A platform Source reports raw edges, including OS key-repeat, and the
// Listener collapses them so exactly one logical press and one logical
// release reach the callbacks per physical key action.
package hotkey

import (
	"errors"
	"sync"
)

// ErrUnknownKey is returned when a key name is not in the platform table.
var ErrUnknownKey = errors.New("unknown hotkey name")

// FallbackName is a key name present in every platform table. Used when the
// configured name cannot be resolved on the current platform.
const FallbackName = "f18"

// Source delivers raw press/release edges for one configured key. Raw edges
// may include duplicates from OS key-repeat; debouncing is the Listener's job.
type Source interface {
	Start(deliver func(pressed bool)) error
	Stop()
}

type Listener struct {
	src       Source
	onPress   func()
	onRelease func()

	mu      sync.Mutex
	pressed bool
}

// NewListener resolves name against the platform key table and wraps the
// resulting source. Fails fast on unrecognized names.
func NewListener(name string, onPress, onRelease func()) (*Listener, error) {
	src, err := newSource(name)
	if err != nil {
		return nil, err
	}
	return NewListenerWithSource(src, onPress, onRelease), nil
}

// NewListenerWithSource wraps an existing source, typically a fake in tests.
func NewListenerWithSource(src Source, onPress, onRelease func()) *Listener {
	return &Listener{src: src, onPress: onPress, onRelease: onRelease}
}

func (l *Listener) Start() error {
	return l.src.Start(l.raw)
}

func (l *Listener) Stop() {
	l.src.Stop()
}

// raw is invoked on the source's delivery goroutine. The callback runs
// outside the critical section so a handler touching listener state cannot
// deadlock against the edge filter.
func (l *Listener) raw(pressed bool) {
	var fire func()

	l.mu.Lock()
	if pressed && !l.pressed {
		l.pressed = true
		fire = l.onPress
	} else if !pressed && l.pressed {
		l.pressed = false
		fire = l.onRelease
	}
	l.mu.Unlock()

	if fire != nil {
		fire()
	}
}
