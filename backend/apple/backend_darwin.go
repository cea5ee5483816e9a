//go:build darwin

package apple

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/gocapture/alloc"
	"github.com/obinnaokechukwu/gocapture/convert"
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/internal/bindings"
	"github.com/obinnaokechukwu/gocapture/internal/errs"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
	"github.com/obinnaokechukwu/gocapture/provider"
)

var delegateSeq atomic.Uint64

// Backend implements provider.Backend on top of AVFoundation's
// AVCaptureSession, per spec §4.6.
type Backend struct {
	mu sync.Mutex

	pool *frame.FramePool
	sink provider.Sink

	device      uintptr
	input       uintptr
	session     uintptr
	output      uintptr
	delegate    uintptr
	delegateCls uintptr

	width, height int
	frameRate     float64
	pixFmtOut     pixelformat.PixelFormat
	orientation   frame.Orientation

	opened    bool
	streaming bool
}

// New returns a Backend drawing frames from pool and delivering them to
// sink.
func New(pool *frame.FramePool, sink provider.Sink) *Backend {
	return &Backend{pool: pool, sink: sink, width: 1280, height: 720, frameRate: 30}
}

func (b *Backend) ensureLoaded() bool {
	if err := bindings.Load(); err != nil {
		errs.New(errs.InitializationFailed, "apple: %v", err)
		return false
	}
	loadCoreFuncs()
	return true
}

// FindDeviceNames enumerates AVCaptureDevice objects of media type video
// and returns their localized names, per spec §4.6.
func (b *Backend) FindDeviceNames() []string {
	if !b.ensureLoaded() {
		return nil
	}
	devices := msg(class("AVCaptureDevice"), "devicesWithMediaType:", nsString("vide"))
	n := arrayCount(devices)
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dev := arrayAt(devices, i)
		names = append(names, goString(msg(dev, "localizedName")))
	}
	return names
}

func (b *Backend) findDevice(nameOrIndex string) uintptr {
	if nameOrIndex == "" {
		return msg(class("AVCaptureDevice"), "defaultDeviceWithMediaType:", nsString("vide"))
	}
	devices := msg(class("AVCaptureDevice"), "devicesWithMediaType:", nsString("vide"))
	n := arrayCount(devices)
	for i := 0; i < n; i++ {
		dev := arrayAt(devices, i)
		if goString(msg(dev, "localizedName")) == nameOrIndex {
			return dev
		}
	}
	return 0
}

// Open builds an AVCaptureSession wired to the named device, an
// AVCaptureVideoDataOutput, and a freshly minted delegate class whose
// captureOutput:didOutputSampleBuffer:fromConnection: implementation
// feeds Backend.sampleBufferIMP, per spec §4.6. It accepts the device's
// default pixel format rather than forcing one through videoSettings,
// since gocapture has no guaranteed way to name CoreVideo's
// kCVPixelBufferPixelFormatTypeKey constant without dlsym-ing it from a
// running process (see DESIGN.md).
func (b *Backend) Open(nameOrIndex string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.ensureLoaded() {
		return false
	}

	device := b.findDevice(nameOrIndex)
	if device == 0 {
		errs.New(errs.DeviceOpenFailed, "apple: no matching AVCaptureDevice for %q", nameOrIndex)
		return false
	}
	retain(device)

	var nsErr uintptr
	input := msg(class("AVCaptureDeviceInput"), "deviceInputWithDevice:error:", device, uintptr(unsafe.Pointer(&nsErr)))
	if input == 0 || nsErr != 0 {
		release(device)
		errs.New(errs.DeviceOpenFailed, "apple: AVCaptureDeviceInput creation failed")
		return false
	}
	retain(input)

	session := msg(msg(class("AVCaptureSession"), "alloc"), "init")
	if session == 0 {
		release(input)
		release(device)
		errs.New(errs.DeviceOpenFailed, "apple: AVCaptureSession alloc/init failed")
		return false
	}

	msg(session, "beginConfiguration")
	if msg(session, "canAddInput:", input) == 0 {
		release(session)
		release(input)
		release(device)
		errs.New(errs.DeviceOpenFailed, "apple: session cannot add input")
		return false
	}
	msg(session, "addInput:", input)

	output := msg(msg(class("AVCaptureVideoDataOutput"), "alloc"), "init")
	retain(output)

	name := fmt.Sprintf("GocaptureDelegate%d", delegateSeq.Add(1))
	imp := purego.NewCallback(b.sampleBufferIMP)
	cls := newDelegateClass(name, imp)
	delegate := msg(msg(cls, "alloc"), "init")
	retain(delegate)

	queue := globalDispatchQueue()
	msg(output, "setSampleBufferDelegate:queue:", delegate, queue)

	if msg(session, "canAddOutput:", output) == 0 {
		release(delegate)
		release(output)
		release(session)
		release(input)
		release(device)
		errs.New(errs.DeviceOpenFailed, "apple: session cannot add output")
		return false
	}
	msg(session, "addOutput:", output)
	msg(session, "commitConfiguration")

	b.device, b.input, b.session, b.output = device, input, session, output
	b.delegate, b.delegateCls = delegate, cls
	b.opened = true
	return true
}

// Start begins streaming (AVCaptureSession startRunning).
func (b *Backend) Start() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opened || b.streaming {
		return false
	}
	msg(b.session, "startRunning")
	b.streaming = true
	return true
}

// Stop halts streaming (AVCaptureSession stopRunning).
func (b *Backend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.streaming {
		return
	}
	msg(b.session, "stopRunning")
	b.streaming = false
}

// Close tears down the session and releases every retained objc object.
func (b *Backend) Close() {
	b.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opened {
		return
	}
	release(b.delegate)
	release(b.output)
	release(b.session)
	release(b.input)
	release(b.device)
	b.device, b.input, b.session, b.output, b.delegate, b.delegateCls = 0, 0, 0, 0, 0, 0
	b.opened = false
}

func (b *Backend) Set(prop provider.Property, value float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch prop {
	case provider.Width:
		b.width = int(value)
	case provider.Height:
		b.height = int(value)
	case provider.FrameRate:
		b.frameRate = value
	case provider.PixelFormatOutput:
		b.pixFmtOut = pixelformat.PixelFormat(uint32(value))
	case provider.FrameOrientation:
		b.orientation = frame.Orientation(int(value))
	case provider.PixelFormatInternal:
		// AVFoundation picks the wire format; see Open's doc comment.
	default:
		return false
	}
	return true
}

func (b *Backend) Get(prop provider.Property) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch prop {
	case provider.Width:
		return float64(b.width)
	case provider.Height:
		return float64(b.height)
	case provider.FrameRate:
		return b.frameRate
	case provider.PixelFormatOutput:
		return float64(uint32(b.pixFmtOut))
	case provider.FrameOrientation:
		return float64(b.orientation)
	default:
		var z float64
		return z / z
	}
}

// DeviceInfo reports the opened device's name only; AVFoundation's
// AVCaptureDeviceFormat enumeration needs CMVideoDimensions-by-value
// struct returns gated behind platform.SupportsStructByValue, left as a
// follow-up rather than guessed at (see DESIGN.md).
func (b *Backend) DeviceInfo() (provider.DeviceInfo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opened {
		return provider.DeviceInfo{}, false
	}
	return provider.DeviceInfo{DeviceName: goString(msg(b.device, "localizedName"))}, true
}

// sampleBufferIMP is the Objective-C method implementation backing
// captureOutput:didOutputSampleBuffer:fromConnection:. It runs on
// AVFoundation's delivery queue, so it must not block.
func (b *Backend) sampleBufferIMP(self, cmd, output, sampleBuffer, connection uintptr) {
	img := cmSampleBufferGetImageBuffer(sampleBuffer)
	if img == 0 {
		return
	}
	cvPixelBufferLockBaseAddress(img, kCVPixelBufferLockReadOnly)
	defer cvPixelBufferUnlockBaseAddress(img, kCVPixelBufferLockReadOnly)

	width := int(cvPixelBufferGetWidth(img))
	height := int(cvPixelBufferGetHeight(img))
	if width == 0 || height == 0 {
		return
	}
	fourcc := cvPixelBufferGetPixelFormatType(img)

	f := b.pool.GetFree()
	ok := false
	switch fourcc {
	case pixFmtNV12VideoRange, pixFmtNV12FullRange:
		ok = fillNV12(f, img, width, height, fourcc == pixFmtNV12FullRange)
	case pixFmtBGRA32:
		ok = fillBGRA(f, img, width, height)
	}
	if !ok {
		return
	}

	b.mu.Lock()
	f.Orientation = b.orientation
	out := b.pixFmtOut
	b.mu.Unlock()

	if out != pixelformat.Unknown && out != f.PixelFormat {
		convert.InplaceConvertFrame(f, out, false)
	}
	if b.sink != nil {
		b.sink(f)
	}
}

func fillNV12(f *frame.VideoFrame, img uintptr, width, height int, fullRange bool) bool {
	yBase := cvPixelBufferGetBaseAddressOfPlane(img, 0)
	yStride := int(cvPixelBufferGetBytesPerRowOfPlane(img, 0))
	uvBase := cvPixelBufferGetBaseAddressOfPlane(img, 1)
	uvStride := int(cvPixelBufferGetBytesPerRowOfPlane(img, 1))
	if yBase == 0 || uvBase == 0 {
		return false
	}

	ySize := yStride * height
	uvSize := uvStride * (height / 2)

	a := f.Allocator
	if a == nil {
		a = alloc.New()
	}
	a.Resize(ySize + uvSize)
	dst := a.Data()
	if dst == nil {
		return false
	}
	copy(dst[:ySize], unsafe.Slice((*byte)(unsafe.Pointer(yBase)), ySize))
	copy(dst[ySize:], unsafe.Slice((*byte)(unsafe.Pointer(uvBase)), uvSize))

	f.PixelFormat = pixelformat.NV12
	if fullRange {
		f.PixelFormat = pixelformat.NV12f
	}
	f.Width, f.Height = width, height
	f.Allocator = a
	f.SizeInBytes = len(dst)
	f.Data = [3][]byte{dst[:ySize], dst[ySize:], nil}
	f.Stride = [3]int{yStride, uvStride, 0}
	return true
}

func fillBGRA(f *frame.VideoFrame, img uintptr, width, height int) bool {
	base := cvPixelBufferGetBaseAddress(img)
	stride := int(cvPixelBufferGetBytesPerRow(img))
	if base == 0 {
		return false
	}

	size := stride * height
	a := f.Allocator
	if a == nil {
		a = alloc.New()
	}
	a.Resize(size)
	dst := a.Data()
	if dst == nil {
		return false
	}
	copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(base)), size))

	f.PixelFormat = pixelformat.BGRA32
	f.Width, f.Height = width, height
	f.Allocator = a
	f.SizeInBytes = len(dst)
	f.Data = [3][]byte{dst, nil, nil}
	f.Stride = [3]int{stride, 0, 0}
	return true
}

var (
	dispatchOnce  sync.Once
	dispatchQueue uintptr
)

// globalDispatchQueue returns libdispatch's default-priority global
// concurrent queue, used as the delegate callback queue instead of
// creating a dedicated serial queue through dispatch_queue_create (one
// fewer symbol to dlsym/register for a single-backend process).
func globalDispatchQueue() uintptr {
	dispatchOnce.Do(func() {
		lib, err := purego.Dlopen("/usr/lib/system/libdispatch.dylib", purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			return
		}
		var getGlobalQueue func(identifier int64, flags uintptr) uintptr
		purego.RegisterLibFunc(&getGlobalQueue, lib, "dispatch_get_global_queue")
		dispatchQueue = getGlobalQueue(0, 0) // DISPATCH_QUEUE_PRIORITY_DEFAULT
	})
	return dispatchQueue
}
