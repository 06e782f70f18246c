//go:build linux

package tray

import "fyne.io/systray"

// Run starts the tray loop on the calling goroutine and blocks until Quit.
// onReady runs once the menu exists.
func Run(onReady func()) {
	systray.Run(onReadyFn(onReady), onExitFn)
}
