package gocapture

import (
	"testing"

	"github.com/obinnaokechukwu/gocapture/internal/errs"
)

func TestSetErrorCallbackReceivesReportedErrors(t *testing.T) {
	var got Error
	SetErrorCallback(func(e Error) { got = e })
	defer SetErrorCallback(nil)

	errs.New(ErrDeviceOpenFailed, "boom: %d", 7)

	if got.Code != ErrDeviceOpenFailed || got.Message != "boom: 7" {
		t.Fatalf("got %+v", got)
	}
}

func TestSetErrorCallbackNilStopsDelivery(t *testing.T) {
	called := false
	SetErrorCallback(func(Error) { called = true })
	SetErrorCallback(nil)

	errs.New(ErrInternalError, "x")
	if called {
		t.Fatal("callback still firing after SetErrorCallback(nil)")
	}
}
