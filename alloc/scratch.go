package alloc

import "sync"

// scratchSlots is the number of scratch allocators handed out to a single
// call chain. Two slots let the conversion engine nest an outer convert
// with an inner flip (or vice versa) without either stage clobbering the
// other's intermediate buffer, per spec §4.1 ("up to two scratch
// allocators are allowed so nested scope... does not self-overwrite").
const scratchSlots = 2

// ScratchPool is a small fixed pool of Allocators handed out to one
// logical call chain.
type ScratchPool struct {
	mu    sync.Mutex
	slots [scratchSlots]Allocator
	inUse [scratchSlots]bool
}

func newScratchPool() *ScratchPool { return &ScratchPool{} }

// Acquire returns an unused scratch Allocator and a release function. It
// panics if all scratchSlots are already checked out, which indicates a
// conversion routine nesting more deeply than the spec anticipates (the
// two-slot budget covers convert+flip; anything beyond that is a
// programming error in a conversion kernel, not a runtime condition to
// recover from quietly).
func (p *ScratchPool) Acquire() (*Allocator, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.inUse {
		if !p.inUse[i] {
			p.inUse[i] = true
			idx := i
			return &p.slots[idx], func() { p.release(idx) }
		}
	}
	panic("gocapture/alloc: scratch pool exhausted (more than 2 nested conversions)")
}

func (p *ScratchPool) release(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inUse[idx] = false
}

func (p *ScratchPool) resetAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.slots {
		p.slots[i].Reset()
	}
}

// sharedScratch is the process-wide registry backing Shared/Reset. Go has
// no first-class thread-local storage, so rather than key scratch pools by
// goroutine (which would need an unsafe runtime.goid shim), gocapture hands
// each goroutine that calls Shared for the first time its own *ScratchPool
// via sync.Pool's goroutine-friendly Get/Put discipline: a conversion call
// borrows a pool for the duration of one inplaceConvertFrame call and
// returns it immediately afterwards, so pools are never actually retained
// per-goroutine, only recycled.
var sharedScratch = sync.Pool{New: func() any { return newScratchPool() }}

var (
	liveMu    sync.Mutex
	livePools []*ScratchPool
)

// Shared borrows a ScratchPool for the duration of the caller's conversion
// call. The returned release function must be called exactly once, after
// which the pool is eligible for reuse by the next caller (on this or any
// other goroutine).
func Shared() (*ScratchPool, func()) {
	p := sharedScratch.Get().(*ScratchPool)

	liveMu.Lock()
	livePools = append(livePools, p)
	liveMu.Unlock()

	return p, func() { sharedScratch.Put(p) }
}

// Reset drops every allocator in every ScratchPool this process has ever
// handed out via Shared, per spec §4.1's "a reset hook drops all slots".
func Reset() {
	liveMu.Lock()
	pools := livePools
	liveMu.Unlock()

	for _, p := range pools {
		p.resetAll()
	}
}
