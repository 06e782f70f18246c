//go:build linux

package permissions

import (
	"os"
	"path/filepath"
	"strings"
)

func probe() Status {
	st := Status{
		InputMonitoring: canReadEvdev(),
		Injection:       canWriteUinput(),
	}
	if !st.InputMonitoring {
		st.InputHint = "add your user to the input group: sudo usermod -aG input $USER"
	}
	if !st.Injection {
		st.InjectionHint = "fix with: sudo modprobe uinput && sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput"
	}
	return st
}

func canReadEvdev() bool {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		f, err := os.Open(filepath.Join("/dev/input", e.Name()))
		if err != nil {
			continue
		}
		f.Close()
		return true
	}
	return false
}

func canWriteUinput() bool {
	for _, path := range []string{"/dev/uinput", "/dev/input/uinput"} {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err == nil {
			f.Close()
			return true
		}
	}
	return false
}
