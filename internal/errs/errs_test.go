package errs

import (
	"sync"
	"testing"
)

func TestNewReportsThroughCallback(t *testing.T) {
	var mu sync.Mutex
	var got Error
	SetCallback(func(e Error) {
		mu.Lock()
		defer mu.Unlock()
		got = e
	})
	defer SetCallback(nil)

	err := New(DeviceOpenFailed, "could not open %q", "/dev/video0")

	mu.Lock()
	defer mu.Unlock()
	if got.Code != DeviceOpenFailed {
		t.Fatalf("callback got code %v, want %v", got.Code, DeviceOpenFailed)
	}
	if err.Code != DeviceOpenFailed {
		t.Fatalf("returned error code %v, want %v", err.Code, DeviceOpenFailed)
	}
	if got.Message != `could not open "/dev/video0"` {
		t.Fatalf("unexpected message: %q", got.Message)
	}
}

func TestNilCallbackIsSilent(t *testing.T) {
	SetCallback(nil)
	// Must not panic.
	Report(Error{Code: InternalError, Message: "boom"})
}

func TestErrorSatisfiesErrorInterface(t *testing.T) {
	var err error = Error{Code: FrameCaptureFailed, Message: "timeout"}
	if err.Error() == "" {
		t.Fatal("Error() should not be empty")
	}
}
