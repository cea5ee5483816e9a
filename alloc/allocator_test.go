package alloc

import (
	"testing"

	"github.com/obinnaokechukwu/gocapture/internal/errs"
)

func TestResizeRoundsUpToAlignment(t *testing.T) {
	a := New()
	a.Resize(10)
	if a.Size() != 10 {
		t.Fatalf("Size() = %d, want 10", a.Size())
	}
	if a.Capacity()%alignment != 0 {
		t.Fatalf("Capacity() = %d, not a multiple of %d", a.Capacity(), alignment)
	}
	if len(a.Data()) != 10 {
		t.Fatalf("Data() length = %d, want 10", len(a.Data()))
	}
}

func TestResizeReusesBlockWithinWindow(t *testing.T) {
	a := New()
	a.Resize(64)
	cap1 := a.Capacity()
	dataPtr := &a.Data()[0]

	// Shrinking to exactly half the capacity is still within [n, 2n].
	a.Resize(32)
	if a.Capacity() != cap1 {
		t.Fatalf("expected capacity reuse, got %d want %d", a.Capacity(), cap1)
	}
	if &a.Data()[0] != dataPtr {
		t.Fatal("expected same backing array to be reused")
	}
}

func TestResizeReallocatesBeyondWindow(t *testing.T) {
	a := New()
	a.Resize(64)
	cap1 := a.Capacity()

	// Shrinking below half the capacity falls outside [n, 2n]; expect realloc.
	a.Resize(1)
	if a.Capacity() == cap1 {
		t.Fatal("expected reallocation for drastic shrink")
	}

	// Growing beyond capacity must also reallocate.
	a.Resize(1000)
	if a.Capacity() < 1000 {
		t.Fatalf("Capacity() = %d, want >= 1000", a.Capacity())
	}
}

func TestResizeZero(t *testing.T) {
	a := New()
	a.Resize(16)
	a.Resize(0)
	if a.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", a.Size())
	}
	if a.Data() != nil {
		t.Fatal("Data() should be nil after resizing to 0")
	}
}

func TestResizeNegativeReportsFailure(t *testing.T) {
	var got errs.Error
	errs.SetCallback(func(e errs.Error) { got = e })
	defer errs.SetCallback(nil)

	a := New()
	a.Resize(-1)
	if a.Data() != nil || a.Size() != 0 {
		t.Fatal("expected Data()==nil and Size()==0 after failed resize")
	}
	if got.Code != errs.MemoryAllocationFailed {
		t.Fatalf("error callback code = %v, want MemoryAllocationFailed", got.Code)
	}
}

func TestResetReleasesImmediately(t *testing.T) {
	a := New()
	a.Resize(64)
	a.Reset()
	if a.Data() != nil || a.Size() != 0 || a.Capacity() != 0 {
		t.Fatal("Reset should drop the held buffer entirely")
	}
}
