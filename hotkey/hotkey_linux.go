//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	evKey      = 1
	keyRelease = 0
	keyPress   = 1
	keyRepeat  = 2
)

const inputEventSize = 24

// Friendly names to evdev key codes (input-event-codes.h).
var keyTable = map[string]uint16{
	"f13":       183,
	"f14":       184,
	"f15":       185,
	"f16":       186,
	"f17":       187,
	"f18":       188,
	"alt_l":     56,
	"alt_r":     100,
	"ctrl_l":    29,
	"ctrl_r":    97,
	"shift_l":   42,
	"shift_r":   54,
	"super_l":   125,
	"super_r":   126,
	"caps_lock": 58,
	"space":     57,
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

// evdevSource reads /dev/input key events directly, watching one key code.
// Key-repeat events are delivered as raw presses; the Listener filters them.
type evdevSource struct {
	code  uint16
	files []*os.File
	stop  chan struct{}
	once  sync.Once
}

func newSource(name string) (Source, error) {
	code, ok := keyTable[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownKey, name, strings.Join(Names(), ", "))
	}
	return &evdevSource{code: code}, nil
}

func (s *evdevSource) Start(deliver func(pressed bool)) error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	s.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		s.files = append(s.files, f)
		go s.readEvents(f, deliver)
	}

	if len(s.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}
	return nil
}

func (s *evdevSource) readEvents(f *os.File, deliver func(pressed bool)) {
	buf := make([]byte, inputEventSize*16)

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey || evCode != s.code {
				continue
			}

			switch evValue {
			case keyPress, keyRepeat:
				deliver(true)
			case keyRelease:
				deliver(false)
			}
		}
	}
}

func (s *evdevSource) Stop() {
	s.once.Do(func() {
		if s.stop != nil {
			close(s.stop)
		}
		for _, f := range s.files {
			f.Close()
		}
	})
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(data))) > 10
}
