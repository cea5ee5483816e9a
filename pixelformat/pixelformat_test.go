package pixelformat

import "testing"

func TestPredicatesMutuallyExclusive(t *testing.T) {
	yuvFormats := []PixelFormat{NV12, NV12f, I420, I420f, YUYV, YUYVf, UYVY, UYVYf}
	rgbFormats := []PixelFormat{RGB24, BGR24, RGBA32, BGRA32}

	for _, f := range yuvFormats {
		if !IsYUV(f) || IsRGB(f) {
			t.Errorf("%v: expected IsYUV=true, IsRGB=false", f)
		}
	}
	for _, f := range rgbFormats {
		if IsYUV(f) || !IsRGB(f) {
			t.Errorf("%v: expected IsYUV=false, IsRGB=true", f)
		}
	}
}

func TestHasAlphaImpliesRGB(t *testing.T) {
	all := []PixelFormat{Unknown, NV12, NV12f, I420, I420f, YUYV, YUYVf, UYVY, UYVYf, RGB24, BGR24, RGBA32, BGRA32}
	for _, f := range all {
		if HasAlpha(f) && !IsRGB(f) {
			t.Errorf("%v: HasAlpha true but IsRGB false", f)
		}
	}
}

func TestIsBGRLike(t *testing.T) {
	if IsBGRLike(RGB24) || IsBGRLike(RGBA32) {
		t.Error("RGB24/RGBA32 should not be BGR-like")
	}
	if !IsBGRLike(BGR24) || !IsBGRLike(BGRA32) {
		t.Error("BGR24/BGRA32 should be BGR-like")
	}
}

func TestIsFullRange(t *testing.T) {
	if !IsFullRange(NV12f) || !IsFullRange(I420f) || !IsFullRange(YUYVf) || !IsFullRange(UYVYf) {
		t.Error("*f variants should be full-range")
	}
	if IsFullRange(NV12) || IsFullRange(I420) || IsFullRange(YUYV) || IsFullRange(UYVY) {
		t.Error("non-f variants should be video-range")
	}
}

func TestInclude(t *testing.T) {
	if !Include(RGBA32, bitRGB) {
		t.Error("RGBA32 should include the RGB family bit")
	}
	if Include(NV12, bitRGB) {
		t.Error("NV12 should not include the RGB family bit")
	}
	if !Include(RGBA32, bitRGB|bitAlpha) {
		t.Error("RGBA32 should include both RGB and alpha bits")
	}
}

func TestChannels(t *testing.T) {
	cases := map[PixelFormat]int{
		RGB24: 3, BGR24: 3, RGBA32: 4, BGRA32: 4, NV12: 0, I420: 0, Unknown: 0,
	}
	for f, want := range cases {
		if got := Channels(f); got != want {
			t.Errorf("Channels(%v) = %d, want %d", f, got, want)
		}
	}
}

func TestStringDoesNotPanic(t *testing.T) {
	for _, f := range []PixelFormat{Unknown, NV12, I420f, YUYV, UYVYf, RGB24, BGRA32, PixelFormat(0xBADF00D)} {
		if f.String() == "" {
			t.Errorf("String() returned empty for %d", f)
		}
	}
}
