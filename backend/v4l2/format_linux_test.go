//go:build linux

package v4l2

import (
	"testing"

	"github.com/obinnaokechukwu/gocapture/pixelformat"
)

func TestFourccRoundTrip(t *testing.T) {
	for _, pf := range []pixelformat.PixelFormat{
		pixelformat.NV12, pixelformat.I420, pixelformat.YUYV,
		pixelformat.UYVY, pixelformat.RGB24, pixelformat.BGR24,
	} {
		cc, ok := fourccFor(pf)
		if !ok {
			t.Fatalf("%s: no fourcc mapping", pf)
		}
		back, ok := pixelFormatFor(cc)
		if !ok || back != pf {
			t.Fatalf("%s: round trip gave %s", pf, back)
		}
	}
}

func TestFourccFullRangeVariantsShareWireFormat(t *testing.T) {
	cc, ok := fourccFor(pixelformat.NV12f)
	if !ok || cc != fourccNV12 {
		t.Fatal("NV12f should negotiate the same wire fourcc as NV12")
	}
}

func TestPixelFormatForUnknownFourcc(t *testing.T) {
	if _, ok := pixelFormatFor(fourcc('X', 'X', 'X', 'X')); ok {
		t.Fatal("expected no mapping for an unrecognized fourcc")
	}
}
