//go:build darwin

package typer

import (
	"time"

	cb "github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// clipboardTyper copies text to the system clipboard and pastes it with
// Cmd+V. macOS has no userspace virtual keyboard short of a CGEvent tap,
// and pasting also survives non-US layouts. The paste lands as one chord,
// so the per-character delay has nothing to pace and is ignored.
type clipboardTyper struct{}

func newPlatform(time.Duration) (Typer, error) {
	// Fail fast if the event source is unavailable (missing Accessibility
	// permission surfaces here as an error on first use instead).
	if _, err := keybd_event.NewKeyBonding(); err != nil {
		return nil, err
	}
	return clipboardTyper{}, nil
}

func (clipboardTyper) Type(text string) error {
	if text == "" {
		return nil
	}
	if err := cb.WriteAll(text); err != nil {
		return err
	}
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_V)
	kb.HasSuper(true) // Cmd+V on macOS
	return kb.Launching()
}
