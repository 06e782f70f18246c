//go:build !linux

package hotkey

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	hk "golang.design/x/hotkey"
)

// Friendly names to system hotkey keys. The system registration API cannot
// bind bare modifiers, so only function keys and space are offered here;
// f13-f18 match the keys spare keyboards and Karabiner remaps expose.
var keyTable = map[string]hk.Key{
	"f13":   hk.KeyF13,
	"f14":   hk.KeyF14,
	"f15":   hk.KeyF15,
	"f16":   hk.KeyF16,
	"f17":   hk.KeyF17,
	"f18":   hk.KeyF18,
	"space": hk.KeySpace,
}

// Names lists the key names accepted on this platform, sorted.
func Names() []string {
	names := make([]string, 0, len(keyTable))
	for name := range keyTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type systemSource struct {
	key  hk.Key
	hky  *hk.Hotkey
	stop chan struct{}
	once sync.Once
}

func newSource(name string) (Source, error) {
	key, ok := keyTable[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownKey, name, strings.Join(Names(), ", "))
	}
	return &systemSource{key: key}, nil
}

func (s *systemSource) Start(deliver func(pressed bool)) error {
	s.hky = hk.New(nil, s.key)
	if err := s.hky.Register(); err != nil {
		return fmt.Errorf("register hotkey: %w", err)
	}
	s.stop = make(chan struct{})

	go func() {
		for {
			select {
			case <-s.hky.Keydown():
				deliver(true)
			case <-s.hky.Keyup():
				deliver(false)
			case <-s.stop:
				return
			}
		}
	}()
	return nil
}

func (s *systemSource) Stop() {
	s.once.Do(func() {
		if s.stop != nil {
			close(s.stop)
		}
		if s.hky != nil {
			s.hky.Unregister()
		}
	})
}
