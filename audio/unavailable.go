package audio

// Unavailable returns a Device whose Start always fails with err. Used when
// no capture device could be opened, so the app can still run and surface
// the failure on each press instead of refusing to start.
func Unavailable(err error) Device {
	return unavailableDevice{err: err}
}

type unavailableDevice struct{ err error }

func (d unavailableDevice) Start() error           { return d.err }
func (unavailableDevice) Stop()                    {}
func (unavailableDevice) Close()                   {}
func (unavailableDevice) SetCallback(DataCallback) {}
func (unavailableDevice) ClearCallback()           {}
