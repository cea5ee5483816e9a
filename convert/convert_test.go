package convert

import (
	"testing"

	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
)

func newTestFrame(fmtv pixelformat.PixelFormat, width, height int, planes ...[]byte) *frame.VideoFrame {
	f := frame.NewFramePool(1).GetFree()
	f.PixelFormat = fmtv
	f.Width, f.Height = width, height
	for i, p := range planes {
		f.Data[i] = p
	}
	switch {
	case len(planes) == 1:
		f.Stride[0] = len(planes[0]) / height
	}
	f.SizeInBytes = len(planes[0])
	return f
}

func TestRGB24ToBGR24FourByTwo(t *testing.T) {
	src := []byte{
		0x00, 0x01, 0x02, 0x10, 0x11, 0x12, 0x20, 0x21, 0x22, 0x30, 0x31, 0x32,
		0x00, 0x01, 0x02, 0x10, 0x11, 0x12, 0x20, 0x21, 0x22, 0x30, 0x31, 0x32,
	}
	f := newTestFrame(pixelformat.RGB24, 4, 2, src)
	f.Stride[0] = 32 // destStride alignment for 3-channel, 4 wide rounds to 32

	// Use a tight, unaligned stride matching the literal input layout.
	f.Stride[0] = 12

	ok := InplaceConvertFrame(f, pixelformat.BGR24, false)
	if !ok {
		t.Fatal("conversion reported failure")
	}

	dStride := f.Stride[0]
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			so := y*12 + x*3
			do := y*dStride + x*3
			r, g, b := src[so], src[so+1], src[so+2]
			if f.Data[0][do] != b || f.Data[0][do+1] != g || f.Data[0][do+2] != r {
				t.Fatalf("pixel (%d,%d): got %v want swapped %v", x, y, f.Data[0][do:do+3], []byte{b, g, r})
			}
		}
	}
}

func TestRGB24ToRGBA32AlphaFill(t *testing.T) {
	src := []byte{10, 20, 30, 40, 50, 60}
	f := newTestFrame(pixelformat.RGB24, 2, 1, src)
	f.Stride[0] = 6

	if !InplaceConvertFrame(f, pixelformat.RGBA32, false) {
		t.Fatal("conversion reported failure")
	}

	want := []byte{10, 20, 30, 255, 40, 50, 60, 255}
	got := f.Data[0][:8]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestBGRA32ToRGB24WithFlip(t *testing.T) {
	src := []byte{
		1, 2, 3, 0xFF, 4, 5, 6, 0xFF, // row 0: B0G0R0A0 B1G1R1A1
		7, 8, 9, 0xFF, 10, 11, 12, 0xFF, // row 1: B2G2R2A2 B3G3R3A3
	}
	f := newTestFrame(pixelformat.BGRA32, 2, 2, src)
	f.Stride[0] = 8

	if !InplaceConvertFrame(f, pixelformat.RGB24, true) {
		t.Fatal("conversion reported failure")
	}

	dStride := f.Stride[0]
	row0 := f.Data[0][0*dStride : 0*dStride+6]
	row1 := f.Data[0][1*dStride : 1*dStride+6]

	wantRow0 := []byte{9, 8, 7, 12, 11, 10} // from src row1 (B2G2R2,B3G3R3) -> R2G2B2,R3G3B3
	wantRow1 := []byte{3, 2, 1, 6, 5, 4}

	for i := range wantRow0 {
		if row0[i] != wantRow0[i] {
			t.Fatalf("row0[%d]: got %d want %d", i, row0[i], wantRow0[i])
		}
	}
	for i := range wantRow1 {
		if row1[i] != wantRow1[i] {
			t.Fatalf("row1[%d]: got %d want %d", i, row1[i], wantRow1[i])
		}
	}
}

func TestNV12VideoRangeBlack(t *testing.T) {
	y := []byte{16, 16, 16, 16}
	uv := []byte{128, 128}
	f := newTestFrame(pixelformat.NV12, 2, 2, y, uv)
	f.Stride[0] = 2
	f.Stride[1] = 2

	if !InplaceConvertFrame(f, pixelformat.BGR24, false) {
		t.Fatal("conversion reported failure")
	}

	dStride := f.Stride[0]
	for py := 0; py < 2; py++ {
		for px := 0; px < 2; px++ {
			off := py*dStride + px*3
			b, g, r := f.Data[0][off], f.Data[0][off+1], f.Data[0][off+2]
			if r != 0 || g != 0 || b != 0 {
				t.Fatalf("pixel (%d,%d): got (%d,%d,%d) want (0,0,0)", px, py, r, g, b)
			}
		}
	}
}

func TestNV12VideoRangeWhite(t *testing.T) {
	y := []byte{235, 235, 235, 235}
	uv := []byte{128, 128}
	f := newTestFrame(pixelformat.NV12, 2, 2, y, uv)
	f.Stride[0] = 2
	f.Stride[1] = 2

	if !InplaceConvertFrame(f, pixelformat.BGR24, false) {
		t.Fatal("conversion reported failure")
	}

	dStride := f.Stride[0]
	for py := 0; py < 2; py++ {
		for px := 0; px < 2; px++ {
			off := py*dStride + px*3
			b, g, r := f.Data[0][off], f.Data[0][off+1], f.Data[0][off+2]
			if r != 255 || g != 255 || b != 255 {
				t.Fatalf("pixel (%d,%d): got (%d,%d,%d) want (255,255,255)", px, py, r, g, b)
			}
		}
	}
}

func TestYUYVFullRangeMidGray(t *testing.T) {
	src := []byte{128, 128, 128, 128} // Y0 U Y1 V
	f := newTestFrame(pixelformat.YUYVf, 2, 1, src)
	f.Stride[0] = 4

	if !InplaceConvertFrame(f, pixelformat.RGBA32, false) {
		t.Fatal("conversion reported failure")
	}

	for px := 0; px < 2; px++ {
		off := px * 4
		r, g, b, a := f.Data[0][off], f.Data[0][off+1], f.Data[0][off+2], f.Data[0][off+3]
		if abs(int(r)-128) > 1 || abs(int(g)-128) > 1 || abs(int(b)-128) > 1 {
			t.Fatalf("pixel %d: got (%d,%d,%d) want ~(128,128,128)", px, r, g, b)
		}
		if a != 255 {
			t.Fatalf("pixel %d: alpha got %d want 255", px, a)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestFlipInvolution(t *testing.T) {
	src := []byte{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}
	f := newTestFrame(pixelformat.RGB24, 2, 2, append([]byte{}, src...))
	f.Stride[0] = 6

	if !InplaceConvertFrame(f, pixelformat.RGB24, true) {
		t.Fatal("first flip reported failure")
	}
	if !InplaceConvertFrame(f, pixelformat.RGB24, true) {
		t.Fatal("second flip reported failure")
	}

	for i := range src {
		if f.Data[0][i] != src[i] {
			t.Fatalf("byte %d: got %d want %d (flip not involutive)", i, f.Data[0][i], src[i])
		}
	}
}

func TestRoundTripRBSwap(t *testing.T) {
	src := []byte{10, 20, 30, 40, 50, 60}
	f := newTestFrame(pixelformat.RGB24, 2, 1, append([]byte{}, src...))
	f.Stride[0] = 6

	if !InplaceConvertFrame(f, pixelformat.BGR24, false) {
		t.Fatal("rgb->bgr reported failure")
	}
	if !InplaceConvertFrame(f, pixelformat.RGB24, false) {
		t.Fatal("bgr->rgb reported failure")
	}

	for i := range src {
		if f.Data[0][i] != src[i] {
			t.Fatalf("byte %d: got %d want %d (round-trip not byte-exact)", i, f.Data[0][i], src[i])
		}
	}
}

func TestYUVToYUVUnsupported(t *testing.T) {
	f := newTestFrame(pixelformat.NV12, 2, 2, make([]byte, 4), make([]byte, 2))
	f.Stride[0], f.Stride[1] = 2, 2

	if InplaceConvertFrame(f, pixelformat.I420, false) {
		t.Fatal("YUV->YUV should be unsupported")
	}
}

func TestRGBToYUVUnsupported(t *testing.T) {
	f := newTestFrame(pixelformat.RGB24, 2, 2, make([]byte, 12))
	f.Stride[0] = 6

	if InplaceConvertFrame(f, pixelformat.NV12, false) {
		t.Fatal("RGB->YUV should be unsupported")
	}
}

func TestOneByOneDimensionsDoNotCrash(t *testing.T) {
	f := newTestFrame(pixelformat.NV12, 1, 1, []byte{200}, []byte{128, 128})
	f.Stride[0], f.Stride[1] = 1, 2

	if !InplaceConvertFrame(f, pixelformat.RGB24, false) {
		t.Fatal("1x1 conversion reported failure")
	}
}

func TestOddWidthYUYVDoesNotCrash(t *testing.T) {
	// width=3: two packed groups cover 4 logical columns; the 4th is
	// dropped deterministically per the odd-width policy.
	src := []byte{
		16, 128, 16, 128,
		16, 128, 16, 128,
	}
	f := newTestFrame(pixelformat.YUYV, 3, 1, src)
	f.Stride[0] = 8

	if !InplaceConvertFrame(f, pixelformat.RGB24, false) {
		t.Fatal("odd-width YUYV conversion reported failure")
	}
	if len(f.Data[0]) < f.Stride[0] {
		t.Fatal("destination buffer too small")
	}
}

func TestSameFormatNoFlipIsNoOp(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	f := newTestFrame(pixelformat.RGB24, 2, 1, src)
	f.Stride[0] = 6

	if !InplaceConvertFrame(f, pixelformat.RGB24, false) {
		t.Fatal("no-op conversion reported failure")
	}
	for i := range src {
		if f.Data[0][i] != src[i] {
			t.Fatalf("byte %d mutated on no-op path", i)
		}
	}
}
