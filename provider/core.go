// Package provider implements ProviderCore (spec §4.5): the
// backend-agnostic queue, callback fan-out, and property store that sits
// between a platform Backend and the calling application.
//
// Grounded on e7canasta-orion-care-sensor's framesupplier package: a
// mutex+sync.Cond mailbox with drop-oldest-on-overflow semantics and a
// blocking read function, generalized from framesupplier's single-slot
// per-worker mailbox to the spec's bounded multi-slot availableFrames
// queue with a single consumer-facing Grab.
package provider

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/obinnaokechukwu/gocapture/alloc"
	"github.com/obinnaokechukwu/gocapture/convert"
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/internal/errs"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
)

// WaitForever is the Grab timeout value meaning "wait indefinitely, in
// one-second slices" (spec §6.1, §4.5).
const WaitForever uint32 = 0xFFFFFFFF

// NewFrameCallback is invoked synchronously on the backend's delivery
// thread for every frame (spec §4.5 "newFrameAvailable"). Returning true
// means "I consumed it; do not enqueue."
type NewFrameCallback func(*frame.VideoFrame) bool

// AllocatorFactory produces a fresh Allocator for a backend to use when
// it needs to materialize a converted buffer (spec §4.5 "setFrameAllocator").
type AllocatorFactory func() *alloc.Allocator

// Core is the provider's backend-agnostic half: frame queueing, callback
// fan-out, pooling, and the FrameProperty store. A Backend is attached via
// SetBackend before Open is usable.
type Core struct {
	backend Backend

	queueMu sync.Mutex
	cond    *sync.Cond
	queue   []*frame.VideoFrame
	opened  bool
	started bool

	maxAvailableFrameSize int

	pool *frame.FramePool

	cbMu sync.Mutex
	cb   NewFrameCallback

	allocMu      sync.Mutex
	allocFactory AllocatorFactory

	frameIndex uint64 // atomic

	propMu     sync.Mutex
	width      float64
	height     float64
	frameRate  float64
	pixFmtIn   pixelformat.PixelFormat
	pixFmtOut  pixelformat.PixelFormat
	orient     frame.Orientation
}

// NewCore returns an unopened Core with default queue/pool sizing and the
// spec's default FrameOrientation (TopToBottom; callers targeting
// DirectShow should set BottomToTop per §4.5).
func NewCore() *Core {
	c := &Core{
		maxAvailableFrameSize: 3,
		pool:                  frame.NewFramePool(frame.DefaultMaxCacheFrameSize),
		orient:                frame.TopToBottom,
	}
	c.cond = sync.NewCond(&c.queueMu)
	return c
}

// SetBackend attaches the platform backend this Core drives. Must be
// called before Open.
func (c *Core) SetBackend(b Backend) { c.backend = b }

// Pool exposes the FramePool so a Backend can draw free frames from the
// same pool Core manages eviction policy for.
func (c *Core) Pool() *frame.FramePool { return c.pool }

// FindDeviceNames returns the backend's device names with real cameras
// first and virtual cameras (names containing, case-insensitively, "obs",
// "virtual", or "fake") last, per spec §6.1.
func (c *Core) FindDeviceNames() []string {
	if c.backend == nil {
		return nil
	}
	names := c.backend.FindDeviceNames()
	sort.SliceStable(names, func(i, j int) bool {
		return !isVirtualCameraName(names[i]) && isVirtualCameraName(names[j])
	})
	return names
}

func isVirtualCameraName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{"obs", "virtual", "fake"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Open opens the named (or, if empty, default) device and optionally
// starts streaming immediately, per spec §6.1.
func (c *Core) Open(nameOrIndex string, autoStart bool) bool {
	if c.backend == nil {
		errs.New(errs.InitializationFailed, "provider: no backend attached")
		return false
	}
	c.applyDefaultPixelFormats()
	if !c.backend.Open(nameOrIndex) {
		errs.New(errs.DeviceOpenFailed, "provider: open(%q) failed", nameOrIndex)
		return false
	}
	c.queueMu.Lock()
	c.opened = true
	c.queueMu.Unlock()

	if autoStart {
		return c.Start()
	}
	return true
}

// applyDefaultPixelFormats fills PixelFormatInternal when it is Unknown
// and the caller wants YUV output, per spec §4.5: NV12f on Apple, NV12
// elsewhere.
func (c *Core) applyDefaultPixelFormats() {
	c.propMu.Lock()
	defer c.propMu.Unlock()
	if c.pixFmtIn == pixelformat.Unknown && pixelformat.IsYUV(c.pixFmtOut) {
		if convert.HasAppleAccelerate() {
			c.pixFmtIn = pixelformat.NV12f
		} else {
			c.pixFmtIn = pixelformat.NV12
		}
	}
}

// Close stops the session (if running) and tears down backend resources.
func (c *Core) Close() {
	c.Stop()
	if c.backend != nil {
		c.backend.Close()
	}
	c.queueMu.Lock()
	c.opened = false
	c.queueMu.Unlock()
	alloc.Reset()
}

// Start begins streaming on the attached backend.
func (c *Core) Start() bool {
	if c.backend == nil || !c.IsOpened() {
		errs.New(errs.DeviceStartFailed, "provider: start called while not opened")
		return false
	}
	if !c.backend.Start() {
		errs.New(errs.DeviceStartFailed, "provider: backend start failed")
		return false
	}
	c.queueMu.Lock()
	c.started = true
	c.queueMu.Unlock()
	return true
}

// Stop halts streaming and wakes every Grab waiter with an empty queue,
// per spec §5's cancellation rules.
func (c *Core) Stop() {
	c.queueMu.Lock()
	wasStarted := c.started
	c.started = false
	c.cond.Broadcast()
	c.queueMu.Unlock()

	if wasStarted && c.backend != nil {
		c.backend.Stop()
	}
}

// IsOpened reports whether Open has succeeded without a matching Close.
func (c *Core) IsOpened() bool {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return c.opened
}

// IsStarted reports whether the session is currently streaming.
func (c *Core) IsStarted() bool {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return c.started
}

// GetDeviceInfo returns the opened device's advertised formats and
// resolutions, deduplicated and sorted by area ascending, per spec §6.1.
func (c *Core) GetDeviceInfo() (DeviceInfo, bool) {
	if c.backend == nil {
		return DeviceInfo{}, false
	}
	info, ok := c.backend.DeviceInfo()
	if !ok {
		return DeviceInfo{}, false
	}

	seen := make(map[Resolution]bool, len(info.Resolutions))
	deduped := make([]Resolution, 0, len(info.Resolutions))
	for _, r := range info.Resolutions {
		if seen[r] {
			continue
		}
		seen[r] = true
		deduped = append(deduped, r)
	}
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].Width*deduped[i].Height < deduped[j].Width*deduped[j].Height
	})
	info.Resolutions = deduped
	return info, true
}

// Set stores a FrameProperty and forwards it to the backend for hardware
// negotiation, per spec §4.5/§6.1.
func (c *Core) Set(prop Property, value float64) bool {
	c.propMu.Lock()
	switch prop {
	case Width:
		c.width = value
	case Height:
		c.height = value
	case FrameRate:
		c.frameRate = value
	case PixelFormatInternal:
		c.pixFmtIn = pixelformat.PixelFormat(uint32(value))
	case PixelFormatOutput:
		c.pixFmtOut = pixelformat.PixelFormat(uint32(value))
	case FrameOrientation:
		c.orient = frame.Orientation(int(value))
	}
	c.propMu.Unlock()

	if c.backend == nil {
		return true
	}
	return c.backend.Set(prop, value)
}

// Get reads back a FrameProperty. Once a device is open, Width/Height
// are read from the backend, which reports the negotiated size; every
// other property, and Width/Height before Open, is the value stored by
// Set.
func (c *Core) Get(prop Property) float64 {
	if (prop == Width || prop == Height) && c.backend != nil && c.IsOpened() {
		return c.backend.Get(prop)
	}
	c.propMu.Lock()
	defer c.propMu.Unlock()
	switch prop {
	case Width:
		return c.width
	case Height:
		return c.height
	case FrameRate:
		return c.frameRate
	case PixelFormatInternal:
		return float64(uint32(c.pixFmtIn))
	case PixelFormatOutput:
		return float64(uint32(c.pixFmtOut))
	case FrameOrientation:
		return float64(c.orient)
	default:
		return nanValue
	}
}

var nanValue = func() float64 {
	var z float64
	return z / z // NaN, matching spec's "NaN if no value"
}()

// SetNewFrameCallback installs the per-frame callback, taking effect
// starting with the very next frame (spec §8.3).
func (c *Core) SetNewFrameCallback(cb NewFrameCallback) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.cb = cb
}

// SetFrameAllocator installs the factory backends use when they need an
// Allocator to materialize a converted buffer.
func (c *Core) SetFrameAllocator(factory AllocatorFactory) {
	c.allocMu.Lock()
	defer c.allocMu.Unlock()
	c.allocFactory = factory
}

// Allocator returns a fresh Allocator from the installed factory, or a
// default Allocator if none was installed.
func (c *Core) Allocator() *alloc.Allocator {
	c.allocMu.Lock()
	factory := c.allocFactory
	c.allocMu.Unlock()
	if factory != nil {
		return factory()
	}
	return alloc.New()
}

// SetMaxAvailableFrameSize bounds the availableFrames queue; enqueuing
// past this size drops the oldest unread frame.
func (c *Core) SetMaxAvailableFrameSize(n int) {
	if n < 1 {
		n = 1
	}
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	c.maxAvailableFrameSize = n
}

// SetMaxCacheFrameSize forwards to the underlying FramePool.
func (c *Core) SetMaxCacheFrameSize(n int) { c.pool.SetMaxCacheFrameSize(n) }

// NewFrameAvailable is the Sink backends call on their own delivery
// thread for every frame they produce (spec §4.5). It assigns frameIndex
// and timestamp, offers the frame to the registered callback, and
// enqueues it unless the callback consumed it.
func (c *Core) NewFrameAvailable(f *frame.VideoFrame) {
	f.FrameIndex = atomic.AddUint64(&c.frameIndex, 1) - 1
	f.TimestampNS = time.Now().UnixNano()

	c.cbMu.Lock()
	cb := c.cb
	c.cbMu.Unlock()

	if cb != nil && cb(f) {
		return // callback consumed the frame; do not enqueue
	}

	c.queueMu.Lock()
	c.queue = append(c.queue, f)
	var evicted *frame.VideoFrame
	if len(c.queue) > c.maxAvailableFrameSize {
		evicted = c.queue[0]
		c.queue = c.queue[1:]
	}
	c.cond.Broadcast()
	c.queueMu.Unlock()

	if evicted != nil {
		evicted.Release()
	}
}

// Grab pops the oldest available frame, blocking up to timeoutMs in
// one-second slices if the queue is empty (spec §4.5). timeoutMs ==
// WaitForever blocks indefinitely; timeoutMs == 0 returns nil immediately
// on an empty queue (spec §8.3).
func (c *Core) Grab(timeoutMs uint32) *frame.VideoFrame {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()

	if f := c.popLocked(); f != nil {
		return f
	}
	if timeoutMs == 0 {
		return nil
	}

	remaining := timeoutMs
	for {
		if !c.started {
			return nil
		}

		timer := time.AfterFunc(time.Second, func() {
			c.queueMu.Lock()
			c.cond.Broadcast()
			c.queueMu.Unlock()
		})
		c.cond.Wait()
		timer.Stop()

		if f := c.popLocked(); f != nil {
			return f
		}
		if timeoutMs != WaitForever {
			if remaining <= 1000 {
				return nil
			}
			remaining -= 1000
		}
	}
}

func (c *Core) popLocked() *frame.VideoFrame {
	if len(c.queue) == 0 {
		return nil
	}
	f := c.queue[0]
	c.queue = c.queue[1:]
	return f
}

// QueueLen reports how many frames are currently queued, for the §8.1
// invariant availableFrames.size() <= maxAvailableFrameSize.
func (c *Core) QueueLen() int {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return len(c.queue)
}
