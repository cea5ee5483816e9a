//go:build windows

package directshow

import (
	"testing"

	"github.com/obinnaokechukwu/gocapture/pixelformat"
)

func TestGuidForRoundTrip(t *testing.T) {
	for _, pf := range negotiationOrder {
		g, ok := guidFor(pf)
		if !ok {
			t.Fatalf("guidFor(%v) missing", pf)
		}
		back, ok := pixelFormatForGUID(g)
		if !ok || back != pf {
			t.Fatalf("pixelFormatForGUID(guidFor(%v)) = %v, %v", pf, back, ok)
		}
	}
}

func TestFourccGUIDMatchesKnownMediaTypeVideo(t *testing.T) {
	// MFMediaType_Video is documented as {73646976-0000-0010-8000-00AA00389B71}.
	if mfMediaTypeVideo.Data1 != 0x73646976 {
		t.Fatalf("mfMediaTypeVideo.Data1 = 0x%x, want 0x73646976", mfMediaTypeVideo.Data1)
	}
}

func TestIsMJPEGOnlyMatchesMJPGSubtype(t *testing.T) {
	if isMJPEG(mfVideoFormatNV12) {
		t.Fatal("NV12 misidentified as MJPEG")
	}
	if !isMJPEG(mfVideoFormatMJPG) {
		t.Fatal("MJPG not identified as MJPEG")
	}
}

func TestBytesPerPixel(t *testing.T) {
	cases := map[pixelformat.PixelFormat]int{
		pixelformat.BGRA32: 4,
		pixelformat.BGR24:  3,
		pixelformat.YUYV:   2,
	}
	for pf, want := range cases {
		if got := bytesPerPixel(pf); got != want {
			t.Fatalf("bytesPerPixel(%v) = %d, want %d", pf, got, want)
		}
	}
}
