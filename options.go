package gocapture

import (
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
	"github.com/obinnaokechukwu/gocapture/provider"
)

// Option configures a Provider before Open negotiates with the device.
// Functional options, the shape the teacher's own NewScaler/CaptureConfig
// constructors favor for optional, named, order-independent configuration.
type Option func(*Provider)

// WithResolution requests width x height. The device may negotiate a
// different resolution; check Provider.Get(Width/Height) after Open.
func WithResolution(width, height int) Option {
	return func(p *Provider) {
		p.core.Set(provider.Width, float64(width))
		p.core.Set(provider.Height, float64(height))
	}
}

// WithFrameRate requests a capture frame rate in frames per second.
func WithFrameRate(fps float64) Option {
	return func(p *Provider) {
		p.core.Set(provider.FrameRate, fps)
	}
}

// WithInternalPixelFormat requests the backend negotiate this pixel
// format with the device, before any conversion is applied.
func WithInternalPixelFormat(pf pixelformat.PixelFormat) Option {
	return func(p *Provider) {
		p.core.Set(provider.PixelFormatInternal, float64(uint32(pf)))
	}
}

// WithOutputPixelFormat requests every delivered frame be converted to
// pf (via convert.InplaceConvertFrame) before it reaches Grab or a
// registered NewFrameCallback.
func WithOutputPixelFormat(pf pixelformat.PixelFormat) Option {
	return func(p *Provider) {
		p.core.Set(provider.PixelFormatOutput, float64(uint32(pf)))
	}
}

// WithOrientation overrides the default row orientation a backend
// reports for RGB-family output (V4L2/AVFoundation default to
// TopToBottom, DirectShow to BottomToTop).
func WithOrientation(o frame.Orientation) Option {
	return func(p *Provider) {
		p.core.Set(provider.FrameOrientation, float64(o))
	}
}

// WithMaxQueueLen bounds how many frames Grab's internal queue holds;
// a frame arriving at a full queue drops the oldest queued one (spec §4.5's
// availableFrames queue; default is provider.Core's own default).
func WithMaxQueueLen(n int) Option {
	return func(p *Provider) {
		p.core.SetMaxAvailableFrameSize(n)
	}
}

// WithMaxCacheFrameSize bounds the FramePool's idle-frame cache.
func WithMaxCacheFrameSize(n int) Option {
	return func(p *Provider) {
		p.core.SetMaxCacheFrameSize(n)
	}
}

// WithNewFrameCallback registers a callback invoked synchronously on
// the backend's delivery thread for every frame, per spec §4.5. The
// callback may return true to consume the frame and prevent it from
// also being enqueued for Grab.
func WithNewFrameCallback(cb provider.NewFrameCallback) Option {
	return func(p *Provider) {
		p.core.SetNewFrameCallback(cb)
	}
}

// WithAutoStart makes Open start streaming immediately instead of
// requiring a separate call to Provider.Start.
func WithAutoStart() Option {
	return func(p *Provider) { p.autoStart = true }
}
