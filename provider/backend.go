package provider

import "github.com/obinnaokechukwu/gocapture/frame"

// Backend is the contract every platform capture backend implements
// (spec §9 "Backend polymorphism"): the seven operations FindDeviceNames,
// Open, Close, Start, Stop, Set and Get, plus DeviceInfo, with the
// newFrameAvailable sink backends feed on their own delivery thread
// supplied at construction.
//
// A Backend is constructed already wired to a Sink (typically
// Core.NewFrameAvailable) and a *frame.FramePool to draw frames from; the
// concrete constructors live in backend/v4l2, backend/apple, and
// backend/directshow, not here, so this package never imports any of
// them and there is no import cycle between "who calls whom."
type Backend interface {
	FindDeviceNames() []string
	Open(nameOrIndex string) bool
	Close()
	Start() bool
	Stop()
	Set(prop Property, value float64) bool
	Get(prop Property) float64
	DeviceInfo() (DeviceInfo, bool)
}

// Sink is the function a Backend calls on its own delivery thread for
// every frame it produces, after filling planes/strides and deciding
// convert/flip. Core.NewFrameAvailable satisfies this signature.
type Sink func(*frame.VideoFrame)
