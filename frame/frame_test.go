package frame

import (
	"testing"

	"github.com/obinnaokechukwu/gocapture/pixelformat"
)

func TestRetainReleaseRunsDisposerOnce(t *testing.T) {
	f := newVideoFrame()
	count := 0
	f.SetDisposer(func() { count++ })

	f.Retain() // refs=2
	f.Release() // refs=1
	if count != 0 {
		t.Fatalf("disposer ran early, count=%d", count)
	}
	f.Release() // refs=0
	if count != 1 {
		t.Fatalf("disposer ran %d times, want 1", count)
	}
}

func TestFramePoolGetFreeReusesIdleFrame(t *testing.T) {
	p := NewFramePool(2)
	f1 := p.GetFree()
	f1.Release()

	f2 := p.GetFree()
	if f1 != f2 {
		t.Fatal("expected GetFree to reuse the idle frame")
	}
	if p.Len() != 1 {
		t.Fatalf("pool size = %d, want 1", p.Len())
	}
}

func TestFramePoolGetFreeGrowsUpToCap(t *testing.T) {
	p := NewFramePool(2)
	f1 := p.GetFree()
	f2 := p.GetFree()
	if f1 == f2 {
		t.Fatal("expected distinct frames while both are held")
	}
	if p.Len() != 2 {
		t.Fatalf("pool size = %d, want 2", p.Len())
	}
}

func TestFramePoolEvictsOldestAtCapacityOnlyWhenIdle(t *testing.T) {
	p := NewFramePool(1)
	f1 := p.GetFree()
	f1.Release() // refcount=0, idle; pool full at cap=1

	f2 := p.GetFree() // must evict f1 since it's idle and the pool is full
	if f2 != f1 {
		t.Fatal("expected eviction to reuse the only slot")
	}
}

func TestFramePoolDropsOldestTrackingWhenNothingIsIdle(t *testing.T) {
	p := NewFramePool(1)
	f1 := p.GetFree() // held, refcount=1, pool full at cap=1

	f2 := p.GetFree() // f1 is still held; must not be reused out from under it
	if f2 == f1 {
		t.Fatal("expected a distinct frame while f1 is still held")
	}
	if p.Len() != 1 {
		t.Fatalf("pool size = %d, want 1 (f1 dropped from tracking, not grown past maxCache)", p.Len())
	}
	if f1.RefCount() != 1 {
		t.Fatalf("f1 refcount = %d, want 1 (still held by caller, untouched by the drop)", f1.RefCount())
	}
}

func TestDetachMaterializesZeroCopyFrame(t *testing.T) {
	f := newVideoFrame()
	native := make([]byte, 12)
	for i := range native {
		native[i] = byte(i)
	}
	f.Width, f.Height = 2, 2
	f.PixelFormat = pixelformat.RGB24
	f.Stride[0] = 6
	f.SizeInBytes = 12
	f.Data[0] = native

	disposed := false
	f.SetDisposer(func() { disposed = true })

	f.Detach()

	if f.Allocator == nil {
		t.Fatal("expected Detach to assign an Allocator")
	}
	if len(f.Data[0]) != 12 {
		t.Fatalf("Data[0] length = %d, want 12", len(f.Data[0]))
	}
	for i := 0; i < 12; i++ {
		if f.Data[0][i] != byte(i) {
			t.Fatalf("byte %d = %d, want %d", i, f.Data[0][i], i)
		}
	}
	if !disposed {
		t.Fatal("expected Detach to run the native disposer")
	}
}
