//go:build darwin

package apple

import (
	"testing"

	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
	"github.com/obinnaokechukwu/gocapture/provider"
)

func TestSetStoresPendingProperties(t *testing.T) {
	b := New(frame.NewFramePool(1), nil)
	b.Set(provider.Width, 1920)
	b.Set(provider.Height, 1080)
	b.Set(provider.PixelFormatOutput, float64(uint32(pixelformat.RGB24)))
	b.Set(provider.FrameOrientation, float64(frame.BottomToTop))

	if b.Get(provider.Width) != 1920 || b.Get(provider.Height) != 1080 {
		t.Fatal("width/height not stored")
	}
	if pixelformat.PixelFormat(uint32(b.Get(provider.PixelFormatOutput))) != pixelformat.RGB24 {
		t.Fatal("output format not stored")
	}
	if frame.Orientation(int(b.Get(provider.FrameOrientation))) != frame.BottomToTop {
		t.Fatal("orientation not stored")
	}
}

func TestGetUnknownPropertyReturnsNaN(t *testing.T) {
	b := New(frame.NewFramePool(1), nil)
	v := b.Get(provider.Property(99))
	if v == v {
		t.Fatal("expected NaN for an unrecognized property")
	}
}

