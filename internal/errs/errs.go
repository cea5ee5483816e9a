// Package errs implements gocapture's error taxonomy (spec §6.3) and the
// process-wide error callback (spec §7): one mutex-guarded callback that
// every component in the module invokes on failure instead of panicking or
// returning only a bare bool/nil.
//
// Grounded on the teacher's errors.go (FFmpegError = avutil.Error, a
// code+message value) and log.go (a single global callback slot guarded by
// its own mutex, set/get/invoke all serialized). gocapture has no FFmpeg
// error codes to wrap, so Error carries this module's own Code enum
// instead.
package errs

import (
	"fmt"
	"sync"
)

// Code identifies the kind of failure, per spec §6.3.
type Code int

const (
	None Code = iota
	NoDeviceFound
	InvalidDevice
	DeviceOpenFailed
	DeviceStartFailed
	DeviceStopFailed
	InitializationFailed
	UnsupportedResolution
	UnsupportedPixelFormat
	FrameRateSetFailed
	PropertySetFailed
	FrameCaptureTimeout
	FrameCaptureFailed
	MemoryAllocationFailed
	InternalError
)

func (c Code) String() string {
	switch c {
	case None:
		return "None"
	case NoDeviceFound:
		return "NoDeviceFound"
	case InvalidDevice:
		return "InvalidDevice"
	case DeviceOpenFailed:
		return "DeviceOpenFailed"
	case DeviceStartFailed:
		return "DeviceStartFailed"
	case DeviceStopFailed:
		return "DeviceStopFailed"
	case InitializationFailed:
		return "InitializationFailed"
	case UnsupportedResolution:
		return "UnsupportedResolution"
	case UnsupportedPixelFormat:
		return "UnsupportedPixelFormat"
	case FrameRateSetFailed:
		return "FrameRateSetFailed"
	case PropertySetFailed:
		return "PropertySetFailed"
	case FrameCaptureTimeout:
		return "FrameCaptureTimeout"
	case FrameCaptureFailed:
		return "FrameCaptureFailed"
	case MemoryAllocationFailed:
		return "MemoryAllocationFailed"
	case InternalError:
		return "InternalError"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error is the value gocapture reports through the global error callback.
// It deliberately also satisfies the error interface so call sites that
// want to log.Fatal/wrap it in the ordinary Go way still can.
type Error struct {
	Code    Code
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("gocapture: %s: %s", e.Code, e.Message)
}

// New builds an Error and reports it through the global callback before
// returning it, so callers can just `return errs.New(...)` at a failure
// site without a separate Report call.
func New(code Code, format string, args ...any) Error {
	e := Error{Code: code, Message: fmt.Sprintf(format, args...)}
	Report(e)
	return e
}

// Callback receives every error detected anywhere in the module. It runs
// synchronously on whatever thread/goroutine detected the failure; the
// callback implementation is responsible for its own thread safety, per
// spec §7 policy 2.
type Callback func(Error)

var (
	mu sync.Mutex
	cb Callback
)

// SetCallback installs the process-wide error callback, replacing any
// previously installed one. Pass nil to stop receiving errors.
func SetCallback(c Callback) {
	mu.Lock()
	defer mu.Unlock()
	cb = c
}

// Report synchronously invokes the currently installed callback, if any.
// A nil callback means errors are silently dropped, matching the spec's
// "Surfaced via a global error callback... settable by the consumer": no
// callback installed is a valid, silent default.
func Report(e Error) {
	mu.Lock()
	c := cb
	mu.Unlock()

	if c != nil {
		c(e)
	}
}
