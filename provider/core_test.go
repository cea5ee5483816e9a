package provider

import (
	"sync"
	"testing"
	"time"

	"github.com/obinnaokechukwu/gocapture/frame"
)

type fakeBackend struct {
	mu       sync.Mutex
	opened   bool
	started  bool
	names    []string
	info     DeviceInfo
	infoOK   bool
	setCalls []Property
}

func (b *fakeBackend) FindDeviceNames() []string    { return b.names }
func (b *fakeBackend) Open(name string) bool        { b.opened = true; return true }
func (b *fakeBackend) Close()                       { b.opened = false }
func (b *fakeBackend) Start() bool                  { b.started = true; return true }
func (b *fakeBackend) Stop()                        { b.started = false }
func (b *fakeBackend) DeviceInfo() (DeviceInfo, bool) { return b.info, b.infoOK }
func (b *fakeBackend) Set(prop Property, value float64) bool {
	b.mu.Lock()
	b.setCalls = append(b.setCalls, prop)
	b.mu.Unlock()
	return true
}
func (b *fakeBackend) Get(prop Property) float64 { return 0 }

func newTestCoreFrame(pool *frame.FramePool) *frame.VideoFrame {
	f := pool.GetFree()
	f.Width, f.Height = 4, 4
	return f
}

func TestFindDeviceNamesSortsVirtualLast(t *testing.T) {
	b := &fakeBackend{names: []string{"OBS Virtual Camera", "USB2.0 HD UVC", "Logitech Webcam"}}
	c := NewCore()
	c.SetBackend(b)

	got := c.FindDeviceNames()
	if got[len(got)-1] != "OBS Virtual Camera" {
		t.Fatalf("expected virtual camera last, got %v", got)
	}
}

func TestOpenStartStopClose(t *testing.T) {
	b := &fakeBackend{}
	c := NewCore()
	c.SetBackend(b)

	if !c.Open("", true) {
		t.Fatal("open+autostart failed")
	}
	if !c.IsOpened() || !c.IsStarted() {
		t.Fatal("expected opened and started")
	}

	c.Close()
	if c.IsOpened() || c.IsStarted() {
		t.Fatal("expected closed and stopped")
	}
}

func TestGrabReturnsImmediatelyWhenQueueNonEmpty(t *testing.T) {
	c := NewCore()
	f := newTestCoreFrame(c.Pool())
	c.NewFrameAvailable(f)

	got := c.Grab(0)
	if got == nil {
		t.Fatal("expected a frame")
	}
}

func TestGrabZeroOnEmptyQueueReturnsNilImmediately(t *testing.T) {
	c := NewCore()
	start := time.Now()
	got := c.Grab(0)
	if got != nil {
		t.Fatal("expected nil")
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatal("grab(0) should not block")
	}
}

func TestGrabReturnsNilOnTimeoutWhenStopped(t *testing.T) {
	b := &fakeBackend{}
	c := NewCore()
	c.SetBackend(b)
	c.Open("", true)

	got := c.Grab(0)
	if got != nil {
		t.Fatal("expected nil on empty queue")
	}

	c.Stop()
	got = c.Grab(WaitForever)
	if got != nil {
		t.Fatal("expected nil: stopped provider must not block forever")
	}
}

func TestNewFrameAvailableWakesWaitingGrab(t *testing.T) {
	b := &fakeBackend{}
	c := NewCore()
	c.SetBackend(b)
	c.Open("", true)

	done := make(chan *frame.VideoFrame, 1)
	go func() {
		done <- c.Grab(WaitForever)
	}()

	time.Sleep(20 * time.Millisecond)
	f := newTestCoreFrame(c.Pool())
	c.NewFrameAvailable(f)

	select {
	case got := <-done:
		if got == nil {
			t.Fatal("expected a frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("grab did not wake on new frame")
	}
}

func TestMaxAvailableFrameSizeEvictsOldest(t *testing.T) {
	c := NewCore()
	c.SetMaxAvailableFrameSize(1)

	f1 := newTestCoreFrame(c.Pool())
	f2 := newTestCoreFrame(c.Pool())
	c.NewFrameAvailable(f1)
	c.NewFrameAvailable(f2)

	if c.QueueLen() != 1 {
		t.Fatalf("expected queue len 1, got %d", c.QueueLen())
	}
	got := c.Grab(0)
	if got != f2 {
		t.Fatal("expected the newer frame to survive eviction")
	}
}

func TestCallbackConsumingFrameSkipsQueue(t *testing.T) {
	c := NewCore()
	consumed := false
	c.SetNewFrameCallback(func(f *frame.VideoFrame) bool {
		consumed = true
		return true
	})

	f := newTestCoreFrame(c.Pool())
	c.NewFrameAvailable(f)

	if !consumed {
		t.Fatal("callback was not invoked")
	}
	if c.QueueLen() != 0 {
		t.Fatal("consumed frame should not be enqueued")
	}
}

func TestCallbackDecliningFrameStillEnqueues(t *testing.T) {
	c := NewCore()
	c.SetNewFrameCallback(func(f *frame.VideoFrame) bool { return false })

	f := newTestCoreFrame(c.Pool())
	c.NewFrameAvailable(f)

	if c.QueueLen() != 1 {
		t.Fatal("declined frame should still be enqueued")
	}
}

func TestSetForwardsToBackend(t *testing.T) {
	b := &fakeBackend{}
	c := NewCore()
	c.SetBackend(b)

	c.Set(Width, 1280)
	if c.Get(Width) != 1280 {
		t.Fatal("Width not stored locally")
	}
	if len(b.setCalls) != 1 || b.setCalls[0] != Width {
		t.Fatal("Set did not forward to backend")
	}
}

func TestGetUnknownPropertyReturnsNaN(t *testing.T) {
	c := NewCore()
	v := c.Get(Property(99))
	if v == v {
		t.Fatal("expected NaN for an unrecognized property")
	}
}
