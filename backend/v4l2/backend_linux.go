//go:build linux

package v4l2

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/obinnaokechukwu/gocapture/alloc"
	"github.com/obinnaokechukwu/gocapture/convert"
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/internal/errs"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
	"github.com/obinnaokechukwu/gocapture/provider"
)

const defaultWidth, defaultHeight = 640, 480
const bufferCount = 4

// Backend implements provider.Backend for Linux /dev/videoN devices
// through VIDIOC_* ioctls and an mmap'd ring of kernel-owned buffers
// (spec §4.8). It never touches a V4L2 userspace library or cgo.
//
// Grounded on other_examples/svanichkin-gocam__capture_linux.go's
// StartStream state machine (open -> negotiate -> REQBUFS/mmap ->
// STREAMON -> capture goroutine -> STREAMOFF/munmap/shutdown),
// restructured from a single free-running function into the
// Open/Start/Stop/Close lifecycle provider.Backend requires, and from
// gocam's internal Frame channel to calling a provider.Sink directly.
type Backend struct {
	mu   sync.Mutex
	fd   int
	path string

	pool *frame.FramePool
	sink provider.Sink

	// QueueLenFn and MaxQueueLen implement the spec's pre-dequeue
	// dropping backpressure: when set, the capture loop drops a
	// dequeued buffer without building a frame whenever QueueLenFn()
	// has already reached MaxQueueLen, to avoid falling further behind
	// a slow consumer. Both are optional; zero value disables dropping.
	QueueLenFn  func() int
	MaxQueueLen int

	width, height int
	frameRate     float64
	pixFmtIn      pixelformat.PixelFormat
	pixFmtOut     pixelformat.PixelFormat
	orientation   frame.Orientation

	negotiated   pixelformat.PixelFormat
	bytesPerLine uint32
	negWidth     int
	negHeight    int

	buffers [][]byte

	streaming bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// New returns a Backend drawing frames from pool and delivering them to
// sink. pool and sink are normally provider.Core's own Pool() and
// NewFrameAvailable.
func New(pool *frame.FramePool, sink provider.Sink) *Backend {
	return &Backend{
		pool:        pool,
		sink:        sink,
		fd:          -1,
		width:       defaultWidth,
		height:      defaultHeight,
		frameRate:   30,
		orientation: frame.TopToBottom,
		MaxQueueLen: 8,
	}
}

// FindDeviceNames scans /dev/video* and returns the card name of every
// node advertising both V4L2_CAP_VIDEO_CAPTURE and V4L2_CAP_STREAMING,
// per spec §4.8.
func (b *Backend) FindDeviceNames() []string {
	paths, _ := filepath.Glob("/dev/video*")
	sort.Strings(paths)

	var names []string
	for _, p := range paths {
		fd, err := unix.Open(p, unix.O_RDWR|unix.O_NONBLOCK, 0)
		if err != nil {
			continue
		}
		var cap v4l2Capability
		if ioctl(fd, vidiocQuerycap, unsafe.Pointer(&cap)) == nil && capturesVideo(&cap) {
			names = append(names, cString(cap.Card[:]))
		}
		unix.Close(fd)
	}
	return names
}

func capturesVideo(cap *v4l2Capability) bool {
	caps := cap.Capabilities
	if caps&v4l2CapDeviceCaps != 0 {
		caps = cap.DeviceCaps
	}
	return caps&v4l2CapVideoCapture != 0 && caps&v4l2CapStreaming != 0
}

// resolvePath turns a nameOrIndex (a device name from FindDeviceNames, a
// bare numeric index, a /dev/videoN path, or "") into a concrete device
// node, preferring an exact card-name match.
func resolvePath(nameOrIndex string) string {
	if nameOrIndex == "" {
		return "/dev/video0"
	}
	if strings.HasPrefix(nameOrIndex, "/dev/") {
		return nameOrIndex
	}
	if n, err := strconv.Atoi(nameOrIndex); err == nil {
		return fmt.Sprintf("/dev/video%d", n)
	}

	paths, _ := filepath.Glob("/dev/video*")
	sort.Strings(paths)
	for _, p := range paths {
		fd, err := unix.Open(p, unix.O_RDWR|unix.O_NONBLOCK, 0)
		if err != nil {
			continue
		}
		var cap v4l2Capability
		matched := ioctl(fd, vidiocQuerycap, unsafe.Pointer(&cap)) == nil && cString(cap.Card[:]) == nameOrIndex
		unix.Close(fd)
		if matched {
			return p
		}
	}
	return "/dev/video0"
}

// Open opens the device, checks capabilities, negotiates a pixel format
// and resolution, and sets up the mmap'd buffer ring, per spec §4.8. It
// does not start streaming; Start does that.
func (b *Backend) Open(nameOrIndex string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := resolvePath(nameOrIndex)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		errs.New(errs.DeviceOpenFailed, "v4l2: open %s: %v", path, err)
		return false
	}

	var cap v4l2Capability
	if ioctl(fd, vidiocQuerycap, unsafe.Pointer(&cap)) != nil || !capturesVideo(&cap) {
		unix.Close(fd)
		errs.New(errs.DeviceOpenFailed, "v4l2: %s does not advertise streaming video capture", path)
		return false
	}

	if !b.negotiateFormatLocked(fd) {
		unix.Close(fd)
		return false
	}

	if !b.setupBuffersLocked(fd) {
		unix.Close(fd)
		return false
	}

	b.fd = fd
	b.path = path
	return true
}

// negotiateFormatLocked runs VIDIOC_S_FMT, trying the caller's requested
// PixelFormatInternal first and falling back through negotiationOrder
// (spec §4.8 negotiateFormat), accepting whatever resolution the driver
// reports back even if it differs from what was requested.
func (b *Backend) negotiateFormatLocked(fd int) bool {
	candidates := negotiationOrder
	if b.pixFmtIn != pixelformat.Unknown {
		candidates = append([]pixelformat.PixelFormat{b.pixFmtIn}, negotiationOrder...)
	}

	for _, candidate := range candidates {
		cc, ok := fourccFor(candidate)
		if !ok {
			continue
		}
		var format v4l2Format
		format.Type = v4l2BufTypeVideoCapture
		pix := format.pix()
		pix.Width = uint32(b.width)
		pix.Height = uint32(b.height)
		pix.Pixelformat = cc
		pix.Field = v4l2FieldAny

		if ioctl(fd, vidiocSFmt, unsafe.Pointer(&format)) != nil {
			continue
		}
		pf, ok := pixelFormatFor(pix.Pixelformat)
		if !ok {
			continue
		}
		b.negotiated = pf
		b.negWidth = int(pix.Width)
		b.negHeight = int(pix.Height)
		b.bytesPerLine = pix.Bytesperline
		return true
	}

	errs.New(errs.UnsupportedPixelFormat, "v4l2: no negotiable pixel format for this device")
	return false
}

// setupBuffersLocked requests bufferCount mmap buffers, maps each one,
// and queues all of them, per spec §4.8's buffer-ring setup.
func (b *Backend) setupBuffersLocked(fd int) bool {
	req := v4l2RequestBuffers{Count: bufferCount, Type: v4l2BufTypeVideoCapture, Memory: v4l2MemoryMMap}
	if ioctl(fd, vidiocReqbufs, unsafe.Pointer(&req)) != nil {
		errs.New(errs.InitializationFailed, "v4l2: VIDIOC_REQBUFS failed")
		return false
	}

	buffers := make([][]byte, req.Count)
	for i := uint32(0); i < req.Count; i++ {
		buf := v4l2Buffer{Type: v4l2BufTypeVideoCapture, Memory: v4l2MemoryMMap, Index: i}
		if ioctl(fd, vidiocQuerybuf, unsafe.Pointer(&buf)) != nil {
			errs.New(errs.InitializationFailed, "v4l2: VIDIOC_QUERYBUF failed for buffer %d", i)
			return false
		}
		mem, err := unix.Mmap(fd, int64(buf.Offset), int(buf.Length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			errs.New(errs.InitializationFailed, "v4l2: mmap buffer %d: %v", i, err)
			return false
		}
		buffers[i] = mem

		if ioctl(fd, vidiocQBuf, unsafe.Pointer(&buf)) != nil {
			errs.New(errs.InitializationFailed, "v4l2: VIDIOC_QBUF failed for buffer %d", i)
			return false
		}
	}
	b.buffers = buffers
	return true
}

// Start issues VIDIOC_STREAMON and launches the capture goroutine.
func (b *Backend) Start() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fd < 0 || b.streaming {
		return false
	}
	bufType := uint32(v4l2BufTypeVideoCapture)
	if ioctl(b.fd, vidiocStreamOn, unsafe.Pointer(&bufType)) != nil {
		errs.New(errs.DeviceStartFailed, "v4l2: VIDIOC_STREAMON failed")
		return false
	}

	b.stopCh = make(chan struct{})
	b.doneCh = make(chan struct{})
	b.streaming = true
	go b.captureLoop(b.fd, b.stopCh, b.doneCh)
	return true
}

// Stop signals the capture goroutine, waits for it to exit, and issues
// VIDIOC_STREAMOFF.
func (b *Backend) Stop() {
	b.mu.Lock()
	if !b.streaming {
		b.mu.Unlock()
		return
	}
	close(b.stopCh)
	done := b.doneCh
	fd := b.fd
	b.mu.Unlock()

	<-done

	b.mu.Lock()
	bufType := uint32(v4l2BufTypeVideoCapture)
	ioctl(fd, vidiocStreamOff, unsafe.Pointer(&bufType))
	b.streaming = false
	b.mu.Unlock()
}

// Close stops streaming if needed, releases the buffer ring, and closes
// the device node.
func (b *Backend) Close() {
	b.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return
	}
	for _, m := range b.buffers {
		unix.Munmap(m)
	}
	b.buffers = nil

	req := v4l2RequestBuffers{Count: 0, Type: v4l2BufTypeVideoCapture, Memory: v4l2MemoryMMap}
	ioctl(b.fd, vidiocReqbufs, unsafe.Pointer(&req))

	unix.Close(b.fd)
	b.fd = -1
}

// captureLoop polls the device fd with a bounded timeout so it can
// observe stopCh promptly, dequeues a filled buffer, builds a frame from
// it (or drops it under backpressure), delivers the frame to sink, and
// requeues the kernel buffer once sink returns. Grounded on gocam's capture goroutine
// shape (poll/select, EAGAIN/EINTR retry, convert, requeue).
func (b *Backend) captureLoop(fd int, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := unix.Poll(pollFds, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			errs.New(errs.FrameCaptureFailed, "v4l2: poll: %v", err)
			return
		}
		if n == 0 {
			continue // timed out without data; re-check stop
		}

		var buf v4l2Buffer
		buf.Type = v4l2BufTypeVideoCapture
		buf.Memory = v4l2MemoryMMap
		if err := ioctl(fd, vidiocDQBuf, unsafe.Pointer(&buf)); err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			errs.New(errs.FrameCaptureFailed, "v4l2: VIDIOC_DQBUF: %v", err)
			return
		}

		b.deliverOrDrop(fd, &buf)
	}
}

// deliverOrDrop builds a VideoFrame from the dequeued buffer and calls
// sink, unless the caller-supplied QueueLenFn reports the consumer is
// already backed up past MaxQueueLen, in which case the buffer is
// requeued immediately without delivering it (spec §4.8 pre-dequeue
// dropping, applied just after DQBUF instead of before it since V4L2
// itself offers no "peek without dequeuing").
func (b *Backend) deliverOrDrop(fd int, buf *v4l2Buffer) {
	defer func() { ioctl(fd, vidiocQBuf, unsafe.Pointer(buf)) }()

	if b.QueueLenFn != nil && b.MaxQueueLen > 0 && b.QueueLenFn() >= b.MaxQueueLen {
		return
	}
	if int(buf.Index) >= len(b.buffers) {
		return
	}

	raw := b.buffers[buf.Index][:buf.Bytesused]
	f := b.pool.GetFree()
	if !fillFrame(f, b.negotiated, b.negWidth, b.negHeight, b.bytesPerLine, raw) {
		return
	}
	f.Orientation = b.orientation

	if b.pixFmtOut != pixelformat.Unknown && b.pixFmtOut != f.PixelFormat {
		convert.InplaceConvertFrame(f, b.pixFmtOut, false)
	}

	if b.sink != nil {
		b.sink(f)
	}
}

// fillFrame copies raw into f's own allocator-backed buffer, slicing it
// into planes per pf's layout (spec §3.2, §4.2).
func fillFrame(f *frame.VideoFrame, pf pixelformat.PixelFormat, width, height int, bytesPerLine uint32, raw []byte) bool {
	a := f.Allocator
	if a == nil {
		a = alloc.New()
	}
	a.Resize(len(raw))
	dst := a.Data()
	if dst == nil {
		return false
	}
	copy(dst, raw)

	f.PixelFormat = pf
	f.Width = width
	f.Height = height
	f.Allocator = a
	f.SizeInBytes = len(dst)

	stride := int(bytesPerLine)
	switch {
	case pixelformat.Include(pf, pixelformat.NV12):
		ySize := stride * height
		f.Data = [3][]byte{dst[:ySize], dst[ySize:], nil}
		f.Stride = [3]int{stride, stride, 0}
	case pixelformat.Include(pf, pixelformat.I420):
		ySize := stride * height
		cStride := stride / 2
		cSize := cStride * (height / 2)
		f.Data = [3][]byte{dst[:ySize], dst[ySize : ySize+cSize], dst[ySize+cSize : ySize+2*cSize]}
		f.Stride = [3]int{stride, cStride, cStride}
	default:
		f.Data = [3][]byte{dst, nil, nil}
		f.Stride = [3]int{stride, 0, 0}
	}
	return true
}

// Set stores a property for the next Open/negotiation and, for
// properties V4L2 exposes as controls, could forward live; this backend
// only applies properties at negotiation time, matching spec §4.8's
// "negotiateFormat on next open" simplification for V4L2 (unlike
// DirectShow/AVFoundation, many UVC drivers reject mid-stream S_FMT).
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
	case provider.PixelFormatInternal:
		b.pixFmtIn = pixelformat.PixelFormat(uint32(value))
	case provider.PixelFormatOutput:
		b.pixFmtOut = pixelformat.PixelFormat(uint32(value))
	case provider.FrameOrientation:
		b.orientation = frame.Orientation(int(value))
	default:
		return false
	}
	return true
}

// Get returns the negotiated value once a device is open, otherwise the
// pending value set via Set.
func (b *Backend) Get(prop provider.Property) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch prop {
	case provider.Width:
		if b.negWidth != 0 {
			return float64(b.negWidth)
		}
		return float64(b.width)
	case provider.Height:
		if b.negHeight != 0 {
			return float64(b.negHeight)
		}
		return float64(b.height)
	case provider.FrameRate:
		return b.frameRate
	case provider.PixelFormatInternal:
		if b.negotiated != pixelformat.Unknown {
			return float64(uint32(b.negotiated))
		}
		return float64(uint32(b.pixFmtIn))
	case provider.PixelFormatOutput:
		return float64(uint32(b.pixFmtOut))
	case provider.FrameOrientation:
		return float64(b.orientation)
	default:
		var z float64
		return z / z
	}
}

// DeviceInfo enumerates the open device's supported pixel formats
// (VIDIOC_ENUM_FMT) and, for each, its frame sizes
// (VIDIOC_ENUM_FRAMESIZES): every discrete size, or the minimum and
// maximum of a stepwise/continuous range, per spec §4.8/§6.1.
func (b *Backend) DeviceInfo() (provider.DeviceInfo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return provider.DeviceInfo{}, false
	}

	info := provider.DeviceInfo{DeviceName: deviceCardName(b.fd)}
	for i := uint32(0); ; i++ {
		desc := v4l2Fmtdesc{Index: i, Type: v4l2BufTypeVideoCapture}
		if ioctl(b.fd, vidiocEnumFmt, unsafe.Pointer(&desc)) != nil {
			break
		}
		if pf, ok := pixelFormatFor(desc.Pixelformat); ok {
			info.PixelFormats = append(info.PixelFormats, uint32(pf))
		}
		info.Resolutions = append(info.Resolutions, enumerateFrameSizes(b.fd, desc.Pixelformat)...)
	}
	return info, true
}

func deviceCardName(fd int) string {
	var cap v4l2Capability
	if ioctl(fd, vidiocQuerycap, unsafe.Pointer(&cap)) != nil {
		return ""
	}
	return cString(cap.Card[:])
}

func enumerateFrameSizes(fd int, pix uint32) []provider.Resolution {
	var out []provider.Resolution
	for i := uint32(0); ; i++ {
		fs := v4l2Frmsizeenum{Index: i, PixelFormat: pix}
		if ioctl(fd, vidiocEnumFramesizes, unsafe.Pointer(&fs)) != nil {
			break
		}
		switch fs.Type {
		case v4l2FrmsizeTypeDiscrete:
			d := (*v4l2FrmsizeDiscrete)(unsafe.Pointer(&fs.Union[0]))
			out = append(out, provider.Resolution{Width: int(d.Width), Height: int(d.Height)})
		case v4l2FrmsizeTypeStepwise, v4l2FrmsizeTypeContinuous:
			s := (*v4l2FrmsizeStepwise)(unsafe.Pointer(&fs.Union[0]))
			out = append(out,
				provider.Resolution{Width: int(s.MinWidth), Height: int(s.MinHeight)},
				provider.Resolution{Width: int(s.MaxWidth), Height: int(s.MaxHeight)})
			return out // stepwise carries no further discrete entries
		}
	}
	return out
}
