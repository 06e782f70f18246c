// Package typer injects transcribed text into the focused application.
package typer

import "time"

// Typer delivers text to whatever window currently has keyboard focus.
type Typer interface {
	Type(text string) error
}

// Noop discards text. Used when no injection backend is available so the
// rest of the app keeps working.
type Noop struct{}

func (Noop) Type(string) error { return nil }

// New returns the platform keystroke injector. delay is an extra pause
// between characters for applications that drop fast synthetic input;
// zero disables it.
func New(delay time.Duration) (Typer, error) {
	return newPlatform(delay)
}
