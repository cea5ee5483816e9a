// Package frame implements VideoFrame and FramePool (spec §3.2-§3.3,
// §4.4): the frame descriptor shared by every backend and the bounded pool
// that reuses frame objects across capture cycles.
//
// Grounded on the teacher's frame.go (a thin struct wrapping a native
// pointer with owned/borrowed bookkeeping) and pool.go's Get/Put pool
// idiom, generalized from a single AVFrame pointer to the spec's
// multi-plane, possibly-zero-copy descriptor with a disposer instead of an
// av_frame_free call.
package frame

import (
	"sync/atomic"

	"github.com/obinnaokechukwu/gocapture/alloc"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
)

// Orientation describes the row order of a frame's RGB planes. YUV frames
// are always TopToBottom (spec §4.5).
type Orientation int

const (
	TopToBottom Orientation = iota
	BottomToTop
)

// Disposer releases exactly one backend-owned native resource (a
// CVPixelBuffer unlock+release, an IMediaSample Release, or a V4L2 buffer
// requeue). It runs exactly once, when the frame's last reference drops.
type Disposer func()

// VideoFrame is the frame descriptor exchanged across the whole pipeline
// (spec §3.2). A frame is writable only while refs()==1 and it is held by
// the backend that is filling it in; once handed to a FramePool consumer
// via the provider it is read-only.
type VideoFrame struct {
	refs int32 // atomic; 1 while held exclusively, 0 once fully released

	Data   [3][]byte // up to three non-owning plane views
	Stride [3]int    // bytes per row per plane; 0 when the plane is absent

	PixelFormat pixelformat.PixelFormat
	Width       int
	Height      int
	SizeInBytes int

	TimestampNS int64
	FrameIndex  uint64
	Orientation Orientation

	// Allocator is non-nil exactly when this frame owns a buffer backing
	// Data[0] (post-conversion, post-detach); nil means the planes point
	// into native backend memory.
	Allocator *alloc.Allocator

	// NativeHandle is an opaque backend-specific token (not interpreted by
	// this package) carried only so backend code can recover context from
	// the frame in logs/diagnostics. Lifetime control lives entirely in
	// disposer, not here.
	NativeHandle uintptr

	disposer Disposer
}

// newVideoFrame returns a frame with a fresh reference count of 1, as
// handed out by FramePool.GetFree.
func newVideoFrame() *VideoFrame {
	return &VideoFrame{refs: 1}
}

// Retain increments the frame's reference count. Call this before handing
// a frame to a second owner (e.g. both a registered callback and the
// availableFrames queue).
func (f *VideoFrame) Retain() {
	atomic.AddInt32(&f.refs, 1)
}

// Release decrements the frame's reference count and runs the disposer
// exactly once when it reaches zero.
func (f *VideoFrame) Release() {
	if atomic.AddInt32(&f.refs, -1) == 0 {
		if d := f.disposer; d != nil {
			f.disposer = nil
			d()
		}
	}
}

// RefCount reports the current reference count. FramePool.GetFree uses
// this to find a frame nobody else is holding.
func (f *VideoFrame) RefCount() int32 {
	return atomic.LoadInt32(&f.refs)
}

// SetDisposer installs (or replaces) the cleanup to run when the frame's
// last reference drops. Backends call this once per fill cycle, right
// after deciding whether the frame is zero-copy or converted.
func (f *VideoFrame) SetDisposer(d Disposer) {
	f.disposer = d
}

// reset clears a frame's content fields in preparation for reuse by
// FramePool, without touching the refcount (the pool manages that) or
// running the previous disposer (the caller must have already released
// the frame, which already ran it).
func (f *VideoFrame) reset() {
	f.Data = [3][]byte{}
	f.Stride = [3]int{}
	f.PixelFormat = pixelformat.Unknown
	f.Width, f.Height, f.SizeInBytes = 0, 0, 0
	f.TimestampNS, f.FrameIndex = 0, 0
	f.Orientation = TopToBottom
	f.Allocator = nil
	f.NativeHandle = 0
	f.disposer = nil
}

// planeHeight returns the number of rows plane p spans: full height for
// plane 0, half height (rounded down, per 4:2:0 chroma subsampling) for
// planes 1 and 2.
func (f *VideoFrame) planeHeight(p int) int {
	if p == 0 {
		return f.Height
	}
	return f.Height / 2
}

// Detach ensures the frame owns its own buffer, materializing a zero-copy
// frame into an allocator-owned buffer if it doesn't already (spec §3.2,
// §4.4). After Detach, the frame no longer depends on the backend's
// native buffer and NativeHandle/disposer are cleared.
func (f *VideoFrame) Detach() {
	if f.Allocator != nil && len(f.Data[0]) > 0 && &f.Data[0][0] == allocatorHead(f.Allocator) {
		return // already owns its buffer
	}

	a := f.Allocator
	if a == nil {
		a = alloc.New()
	}
	a.Resize(f.SizeInBytes)
	dst := a.Data()
	if dst == nil {
		return // Resize already reported MemoryAllocationFailed
	}

	copy(dst, f.flatten())

	var newData [3][]byte
	offset := 0
	for p := 0; p < 3; p++ {
		if f.Stride[p] == 0 {
			continue
		}
		n := f.Stride[p] * f.planeHeight(p)
		newData[p] = dst[offset : offset+n]
		offset += n
	}

	if d := f.disposer; d != nil {
		f.disposer = nil
		d()
	}
	f.Data = newData
	f.Allocator = a
	f.NativeHandle = 0
}

// flatten copies every present plane into one contiguous slice, used only
// by Detach to materialize a zero-copy frame's scattered planes.
func (f *VideoFrame) flatten() []byte {
	out := make([]byte, 0, f.SizeInBytes)
	for p := 0; p < 3; p++ {
		if f.Stride[p] == 0 {
			continue
		}
		n := f.Stride[p] * f.planeHeight(p)
		if n > len(f.Data[p]) {
			n = len(f.Data[p])
		}
		out = append(out, f.Data[p][:n]...)
	}
	return out
}

func allocatorHead(a *alloc.Allocator) *byte {
	d := a.Data()
	if len(d) == 0 {
		return nil
	}
	return &d[0]
}
