//go:build !linux

package audio

import (
	"fmt"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// OpenDevice opens the default capture device through miniaudio.
func OpenDevice(config CaptureConfig) (Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	d := &malgoCapture{ctx: ctx}
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			if cb := d.callback.Load(); cb != nil {
				(*cb)(data, frameCount)
			}
		},
	}

	dev, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("malgo device: %w", err)
	}
	d.dev = dev
	return d, nil
}

type malgoCapture struct {
	ctx      *malgo.AllocatedContext
	dev      *malgo.Device
	callback atomic.Pointer[DataCallback]
}

func (d *malgoCapture) Start() error {
	if err := d.dev.Start(); err != nil {
		return fmt.Errorf("malgo start: %w", err)
	}
	return nil
}

func (d *malgoCapture) Stop() {
	if d.dev.IsStarted() {
		_ = d.dev.Stop()
	}
}

func (d *malgoCapture) Close() {
	d.dev.Uninit()
	d.ctx.Uninit()
	d.ctx.Free()
}

func (d *malgoCapture) SetCallback(cb DataCallback) {
	d.callback.Store(&cb)
}

func (d *malgoCapture) ClearCallback() {
	d.callback.Store(nil)
}
