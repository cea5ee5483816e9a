//go:build darwin

package apple

import "testing"

func TestOSTypeMatchesKnownAppleConstant(t *testing.T) {
	// kCVPixelFormatType_32BGRA is documented as 0x42475241.
	if pixFmtBGRA32 != 0x42475241 {
		t.Fatalf("pixFmtBGRA32 = 0x%x, want 0x42475241", pixFmtBGRA32)
	}
}

func TestOSTypeNV12VariantsDifferOnlyInLastByte(t *testing.T) {
	if pixFmtNV12VideoRange^pixFmtNV12FullRange != 'v'^'f' {
		t.Fatal("video-range and full-range NV12 constants should differ only in their last byte")
	}
}
