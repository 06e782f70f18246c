//go:build !linux

package tray

import (
	"fyne.io/systray"
	"golang.design/x/hotkey/mainthread"
)

// Run attaches the tray to the main-thread event loop started by
// mainthread.Init and blocks until Quit. onReady runs once the menu exists.
func Run(onReady func()) {
	start, end := systray.RunWithExternalLoop(onReadyFn(onReady), onExitFn)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	<-quitCh
	end()
}
