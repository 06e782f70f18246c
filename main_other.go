//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

// The system hotkey hook and the tray both need the OS main thread here;
// mainthread pumps it while run proceeds on a goroutine.
func main() {
	mainthread.Init(run)
}
