package gocapture

import (
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/provider"
)

// ListDevices returns the names of every capture device this platform's
// backend can see, real cameras sorted before virtual ones (spec §6.1),
// without opening any of them. Grounded on the teacher's capture.go
// ListDevices, generalized from "not implemented, use platform tools"
// to an actual enumeration since gocapture owns its own backends
// instead of delegating to libavdevice.
func ListDevices() []string {
	b := newPlatformBackend(frame.NewFramePool(1), nil)
	if b == nil {
		return nil
	}
	c := provider.NewCore()
	c.SetBackend(b)
	return c.FindDeviceNames()
}
