// Package gocapture provides cross-platform webcam capture without cgo:
// V4L2 on Linux, AVFoundation on macOS, and Media Foundation on Windows,
// each driven through raw syscalls/dlopen rather than a C binding
// layer. Call Open to get a running capture session, then Grab (or a
// registered NewFrameCallback) to pull frames.
//
// For most use cases, use Open and the returned *Provider. The
// pixelformat, frame, and convert packages are available for advanced
// use: building a custom pipeline, converting a frame to a different
// pixel format, or dumping a frame to disk via the dump package.
package gocapture

import "github.com/obinnaokechukwu/gocapture/provider"

// Property re-exports provider.Property for callers who only import
// the root package.
type Property = provider.Property

const (
	Width               = provider.Width
	Height              = provider.Height
	FrameRate           = provider.FrameRate
	PixelFormatInternal = provider.PixelFormatInternal
	PixelFormatOutput   = provider.PixelFormatOutput
	FrameOrientation    = provider.FrameOrientation
)

// DeviceInfo and Resolution re-export their provider package equivalents.
type (
	DeviceInfo = provider.DeviceInfo
	Resolution = provider.Resolution
)

// WaitForever re-exports provider.WaitForever, the Grab timeout meaning
// "block indefinitely."
const WaitForever = provider.WaitForever
