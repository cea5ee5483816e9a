package dump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
)

func newTestFrame(pf pixelformat.PixelFormat, width, height int, orient frame.Orientation, data []byte, stride int) *frame.VideoFrame {
	f := frame.NewFramePool(1).GetFree()
	f.PixelFormat = pf
	f.Width, f.Height = width, height
	f.Orientation = orient
	f.Data = [3][]byte{data, nil, nil}
	f.Stride = [3]int{stride, 0, 0}
	f.SizeInBytes = len(data)
	return f
}

func TestSaveFrameDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	f := newTestFrame(pixelformat.BGR24, 2, 2, frame.BottomToTop, []byte{
		0, 0, 0, 1, 1, 1,
		2, 2, 2, 3, 3, 3,
	}, 6)

	bmpPath := filepath.Join(dir, "out.bmp")
	if err := SaveFrame(f, bmpPath); err != nil {
		t.Fatalf("SaveFrame(bmp) = %v", err)
	}
	info, err := os.Stat(bmpPath)
	if err != nil || info.Size() != bmpHeaderSize+int64(8*2) {
		t.Fatalf("unexpected bmp file size: %v, err=%v", info, err)
	}

	rawPath := filepath.Join(dir, "out.yuv")
	if err := SaveFrame(f, rawPath); err != nil {
		t.Fatalf("SaveFrame(raw) = %v", err)
	}
	raw, err := os.ReadFile(rawPath)
	if err != nil || len(raw) != 12 {
		t.Fatalf("unexpected raw dump: len=%d err=%v", len(raw), err)
	}
}

func TestSaveBMPDoesNotMutateSourceFrame(t *testing.T) {
	original := []byte{10, 20, 30, 40, 50, 60}
	f := newTestFrame(pixelformat.BGR24, 1, 2, frame.TopToBottom, append([]byte(nil), original...), 3)

	dir := t.TempDir()
	if err := saveBMP(f, filepath.Join(dir, "out.bmp")); err != nil {
		t.Fatalf("saveBMP: %v", err)
	}
	if string(f.Data[0]) != string(original) {
		t.Fatal("saveBMP mutated the caller's frame")
	}
	if f.Orientation != frame.TopToBottom {
		t.Fatal("saveBMP mutated the caller's frame orientation")
	}
}

func TestSaveFrameRejectsZeroDimensions(t *testing.T) {
	f := newTestFrame(pixelformat.BGR24, 0, 0, frame.TopToBottom, nil, 0)
	if err := SaveFrame(f, filepath.Join(t.TempDir(), "out.bmp")); err == nil {
		t.Fatal("expected error for zero-dimension frame")
	}
}
