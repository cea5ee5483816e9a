package frame

import "sync"

// DefaultMaxCacheFrameSize is the default FramePool capacity (spec §3.3).
const DefaultMaxCacheFrameSize = 15

// FramePool is a bounded, mutex-protected deque of frame objects (spec
// §3.3). GetFree scans for a frame nobody else references; failing that,
// it drops the oldest tracked frame from the pool once at capacity (it
// remains valid for whoever still holds it; the pool just stops tracking
// it), and allocates a new one.
//
// Grounded on the teacher's pool.go FramePool (Get/Put over a mutex-backed
// idle list), generalized from "always reuse or allocate" to the spec's
// "scan for refcount==0, else evict-oldest-tracking-and-grow" policy.
type FramePool struct {
	mu       sync.Mutex
	frames   []*VideoFrame
	maxCache int
}

// NewFramePool creates a FramePool with the given capacity. A
// non-positive maxCache is replaced with DefaultMaxCacheFrameSize.
func NewFramePool(maxCache int) *FramePool {
	if maxCache <= 0 {
		maxCache = DefaultMaxCacheFrameSize
	}
	return &FramePool{maxCache: maxCache}
}

// SetMaxCacheFrameSize adjusts the pool's capacity. Frames already checked
// out are unaffected; the new cap takes effect on the next GetFree that
// needs to evict or grow.
func (p *FramePool) SetMaxCacheFrameSize(n int) {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxCache = n
}

// Len reports how many frame objects the pool currently holds (in use or
// idle), for the §8.1 invariant framePool.size() <= maxCacheFrameSize+1.
func (p *FramePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// GetFree returns a fresh, reset frame ready for a backend to fill in. It
// scans for a frame whose last reference has already dropped (refcount 0 —
// nobody holds it, its disposer, if any, already ran) and reuses it in
// place. The pool itself holds no reference of its own on a tracked frame,
// so refcount 0, not 1, is the only safe "idle" test: a frame sitting in a
// consumer's queue awaiting Grab is still at refcount 1 and must not be
// reused out from under it.
//
// If nothing is idle and the pool is already at capacity, the oldest
// tracked frame is dropped from the pool's own bookkeeping (per spec
// §3.3/§4.4, "evicts the front when the pool exceeds maxCacheFrameSize")
// before a brand new frame is allocated and appended — this bounds
// p.frames at maxCache without touching the dropped frame's memory, which
// may still be held by whoever has it; that frame simply stops being
// pool-tracked and is freed once its own last reference drops.
func (p *FramePool) GetFree() *VideoFrame {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.frames {
		if f.RefCount() == 0 {
			f.reset()
			f.refs = 1
			return f
		}
	}

	if len(p.frames) >= p.maxCache {
		p.frames = p.frames[1:]
	}

	f := newVideoFrame()
	p.frames = append(p.frames, f)
	return f
}
