package gocapture

import "github.com/obinnaokechukwu/gocapture/internal/errs"

// Error is the value reported through the error callback (spec §7): a
// Code plus a human-readable Message. It also satisfies the error
// interface, mirroring the teacher's FFmpegError = avutil.Error.
type Error = errs.Error

// ErrorCode identifies the kind of failure a reported Error carries.
type ErrorCode = errs.Code

// Error codes re-exported from internal/errs.
const (
	ErrNone                   = errs.None
	ErrNoDeviceFound          = errs.NoDeviceFound
	ErrInvalidDevice          = errs.InvalidDevice
	ErrDeviceOpenFailed       = errs.DeviceOpenFailed
	ErrDeviceStartFailed      = errs.DeviceStartFailed
	ErrDeviceStopFailed       = errs.DeviceStopFailed
	ErrInitializationFailed   = errs.InitializationFailed
	ErrUnsupportedResolution  = errs.UnsupportedResolution
	ErrUnsupportedPixelFormat = errs.UnsupportedPixelFormat
	ErrFrameRateSetFailed     = errs.FrameRateSetFailed
	ErrPropertySetFailed      = errs.PropertySetFailed
	ErrFrameCaptureTimeout    = errs.FrameCaptureTimeout
	ErrFrameCaptureFailed     = errs.FrameCaptureFailed
	ErrMemoryAllocationFailed = errs.MemoryAllocationFailed
	ErrInternalError          = errs.InternalError
)

// ErrorCallback receives every error detected anywhere in gocapture
// (spec §7). It runs synchronously on whatever goroutine detected the
// failure.
type ErrorCallback func(Error)

// SetErrorCallback installs the process-wide error callback, replacing
// any previously installed one. Pass nil to stop receiving errors; a
// nil callback (the default) means errors are silently dropped.
func SetErrorCallback(cb ErrorCallback) {
	if cb == nil {
		errs.SetCallback(nil)
		return
	}
	errs.SetCallback(func(e errs.Error) { cb(e) })
}
