package gocapture

import (
	"testing"

	"github.com/obinnaokechukwu/gocapture/pixelformat"
	"github.com/obinnaokechukwu/gocapture/provider"
)

type fakeBackend struct {
	opened   bool
	names    []string
	setCalls []provider.Property
}

func (b *fakeBackend) FindDeviceNames() []string { return b.names }
func (b *fakeBackend) Open(string) bool          { b.opened = true; return true }
func (b *fakeBackend) Close()                    { b.opened = false }
func (b *fakeBackend) Start() bool               { return true }
func (b *fakeBackend) Stop()                     {}
func (b *fakeBackend) DeviceInfo() (provider.DeviceInfo, bool) {
	return provider.DeviceInfo{DeviceName: "fake"}, true
}
func (b *fakeBackend) Set(prop provider.Property, value float64) bool {
	b.setCalls = append(b.setCalls, prop)
	return true
}
func (b *fakeBackend) Get(provider.Property) float64 { return 0 }

// newTestProvider bypasses Open/newPlatformBackend (which is
// build-tag-gated per OS) so options and forwarding methods can be
// exercised against a fake backend on any platform.
func newTestProvider(b provider.Backend, opts ...Option) *Provider {
	p := &Provider{core: provider.NewCore()}
	p.core.SetBackend(b)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func TestOptionsForwardToBackendSet(t *testing.T) {
	b := &fakeBackend{}
	p := newTestProvider(b,
		WithResolution(1280, 720),
		WithFrameRate(30),
		WithInternalPixelFormat(pixelformat.NV12),
		WithOutputPixelFormat(pixelformat.BGR24),
	)

	want := map[provider.Property]bool{
		provider.Width: true, provider.Height: true,
		provider.FrameRate: true, provider.PixelFormatInternal: true,
		provider.PixelFormatOutput: true,
	}
	got := map[provider.Property]bool{}
	for _, prop := range b.setCalls {
		got[prop] = true
	}
	for prop := range want {
		if !got[prop] {
			t.Fatalf("property %v was never forwarded to the backend", prop)
		}
	}

	_ = p
}

func TestWithAutoStartSetsFlag(t *testing.T) {
	p := newTestProvider(&fakeBackend{}, WithAutoStart())
	if !p.autoStart {
		t.Fatal("WithAutoStart did not set autoStart")
	}
}

func TestDeviceInfoForwardsToCore(t *testing.T) {
	p := newTestProvider(&fakeBackend{})
	p.core.Open("", false)

	info, ok := p.DeviceInfo()
	if !ok || info.DeviceName != "fake" {
		t.Fatalf("DeviceInfo() = %v, %v", info, ok)
	}
}
