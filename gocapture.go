package gocapture

import (
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/internal/errs"
	"github.com/obinnaokechukwu/gocapture/provider"
)

// Provider is a capture session: a platform Backend driven by a
// provider.Core, wired together by Open. Grounded on the teacher's
// Decoder (one struct owning the native resource plus the Go-side state
// around it, closed exactly once via Close).
type Provider struct {
	core      *provider.Core
	autoStart bool
}

// Open opens the named device (or the platform default, if nameOrIndex
// is empty) and returns a ready Provider. Options configure resolution,
// pixel formats, queue sizing, and callbacks before the device
// negotiation in Open itself runs (spec §6.1's open/autoStart pair,
// folded into a single call the way the teacher's NewCapture folds
// "build config, open input format, start demuxing" into one
// constructor).
func Open(nameOrIndex string, opts ...Option) (*Provider, error) {
	p := &Provider{core: provider.NewCore()}

	backend := newPlatformBackend(p.core.Pool(), p.core.NewFrameAvailable)
	if backend == nil {
		return nil, errs.New(errs.InitializationFailed, "gocapture: no capture backend for this platform")
	}
	p.core.SetBackend(backend)

	for _, opt := range opts {
		opt(p)
	}

	if !p.core.Open(nameOrIndex, p.autoStart) {
		return nil, errs.New(errs.DeviceOpenFailed, "gocapture: open(%q) failed", nameOrIndex)
	}
	logf(LogInfo, "opened device %q (%gx%g)", nameOrIndex, p.core.Get(provider.Width), p.core.Get(provider.Height))
	return p, nil
}

// Start begins streaming, if it isn't already.
func (p *Provider) Start() bool {
	ok := p.core.Start()
	if !ok {
		logf(LogError, "start failed")
	}
	return ok
}

// Stop halts streaming without releasing the device; Start can resume
// it.
func (p *Provider) Stop() { p.core.Stop() }

// Close stops streaming (if needed) and releases the device.
func (p *Provider) Close() {
	p.core.Close()
	logf(LogInfo, "closed")
}

// IsOpened reports whether a device is currently open.
func (p *Provider) IsOpened() bool { return p.core.IsOpened() }

// IsStarted reports whether streaming is currently running.
func (p *Provider) IsStarted() bool { return p.core.IsStarted() }

// Grab blocks until a frame is available or timeoutMs elapses
// (WaitForever to block indefinitely), returning the oldest queued
// frame. The caller must Release it.
func (p *Provider) Grab(timeoutMs uint32) *frame.VideoFrame {
	return p.core.Grab(timeoutMs)
}

// Set configures a Property on the live session (spec §6.1); most
// backends only apply these at the next Open.
func (p *Provider) Set(prop Property, value float64) bool { return p.core.Set(prop, value) }

// Get reads back a Property's current (negotiated, if opened) value.
func (p *Provider) Get(prop Property) float64 { return p.core.Get(prop) }

// DeviceInfo reports the opened device's name and advertised pixel
// formats/resolutions.
func (p *Provider) DeviceInfo() (DeviceInfo, bool) { return p.core.GetDeviceInfo() }

// SetNewFrameCallback registers a callback invoked synchronously for
// every frame the backend produces, ahead of Grab's own queue.
func (p *Provider) SetNewFrameCallback(cb provider.NewFrameCallback) {
	p.core.SetNewFrameCallback(cb)
}

// SetFrameAllocator installs the factory used when a backend needs to
// materialize a converted buffer (spec §4.5's setFrameAllocator).
func (p *Provider) SetFrameAllocator(factory provider.AllocatorFactory) {
	p.core.SetFrameAllocator(factory)
}
