//go:build windows

package directshow

import (
	"testing"

	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
	"github.com/obinnaokechukwu/gocapture/provider"
)

func TestNewDefaultsToBottomToTop(t *testing.T) {
	b := New(frame.NewFramePool(1), nil)
	if b.orientation != frame.BottomToTop {
		t.Fatalf("orientation = %v, want BottomToTop", b.orientation)
	}
}

func TestSetStoresPendingPropertiesBeforeOpen(t *testing.T) {
	b := New(frame.NewFramePool(1), nil)
	b.Set(provider.Width, 1280)
	b.Set(provider.Height, 720)
	b.Set(provider.PixelFormatOutput, float64(uint32(pixelformat.BGR24)))

	if b.Get(provider.Width) != 1280 || b.Get(provider.Height) != 720 {
		t.Fatal("width/height not stored before negotiation")
	}
	if pixelformat.PixelFormat(uint32(b.Get(provider.PixelFormatOutput))) != pixelformat.BGR24 {
		t.Fatal("output format not stored")
	}
}

func TestGetUnknownPropertyReturnsNaN(t *testing.T) {
	b := New(frame.NewFramePool(1), nil)
	v := b.Get(provider.Property(99))
	if v == v {
		t.Fatal("expected NaN for an unrecognized property")
	}
}

func TestFillFrameNV12SlicesPlanesContiguously(t *testing.T) {
	const width, height, stride = 4, 2, 4
	raw := make([]byte, stride*height+stride*height/2)
	for i := range raw {
		raw[i] = byte(i)
	}

	f := frame.NewFramePool(1).GetFree()
	if !fillFrame(f, pixelformat.NV12, width, height, stride, raw) {
		t.Fatal("fillFrame returned false")
	}
	if len(f.Data[0]) != stride*height {
		t.Fatalf("Y plane length = %d, want %d", len(f.Data[0]), stride*height)
	}
	if len(f.Data[1]) != stride*height/2 {
		t.Fatalf("UV plane length = %d, want %d", len(f.Data[1]), stride*height/2)
	}
	if f.Data[2] != nil {
		t.Fatal("NV12 should not populate a third plane")
	}
}

func TestFillFramePackedFormatUsesSinglePlane(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6}
	f := frame.NewFramePool(1).GetFree()
	if !fillFrame(f, pixelformat.BGR24, 2, 1, 6, raw) {
		t.Fatal("fillFrame returned false")
	}
	if len(f.Data[0]) != len(raw) || f.Data[1] != nil || f.Data[2] != nil {
		t.Fatal("packed format should use exactly one plane")
	}
}

func TestDeliverOrDropDropsUnderBackpressureWithoutReadingSample(t *testing.T) {
	called := false
	b := New(frame.NewFramePool(1), func(*frame.VideoFrame) { called = true })
	b.QueueLenFn = func() int { return 10 }
	b.MaxQueueLen = 4

	b.deliverOrDrop(0) // a zero sample handle would panic downstream if reached

	if called {
		t.Fatal("sink should not be called when the queue is already full")
	}
}
