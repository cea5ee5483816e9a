//go:build darwin

// Package apple implements BackendApple (spec §4.6): the macOS capture
// backend driving AVFoundation's AVCaptureSession directly through the
// objc runtime via purego, with no cgo.
//
// Grounded on other_examples/svanichkin-gocam__capture_macos.go's
// AVCaptureSession/AVCaptureVideoDataOutput/sample-buffer-delegate
// pipeline (there expressed in cgo+Objective-C; here rebuilt message
// send by message send) and the teacher's internal/bindings package,
// which already dlopens the objc runtime and the relevant frameworks
// purego-style — this package is the first thing in the module to
// actually drive those bindings end to end.
package apple

import (
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/gocapture/internal/bindings"
)

func class(name string) uintptr { return bindings.ObjcGetClass(name) }
func sel(name string) uintptr   { return bindings.SelRegisterName(name) }

func msg(receiver uintptr, selector string, args ...uintptr) uintptr {
	return bindings.ObjcMsgSend(receiver, sel(selector), args...)
}

// cString returns a NUL-terminated copy of s and a pointer to it. The
// caller must keep a reference to buf alive for as long as ptr is used;
// Go's GC otherwise has no reason to think ptr points at live memory.
func cString(s string) (buf []byte, ptr uintptr) {
	buf = append([]byte(s), 0)
	return buf, uintptr(unsafe.Pointer(&buf[0]))
}

func nsString(s string) uintptr {
	buf, ptr := cString(s)
	_ = buf
	return msg(class("NSString"), "stringWithUTF8String:", ptr)
}

func goString(nsstr uintptr) string {
	if nsstr == 0 {
		return ""
	}
	ptr := msg(nsstr, "UTF8String")
	if ptr == 0 {
		return ""
	}
	var out []byte
	for i := uintptr(0); ; i++ {
		b := *(*byte)(unsafe.Pointer(ptr + i))
		if b == 0 {
			break
		}
		out = append(out, b)
	}
	return string(out)
}

func arrayCount(nsarray uintptr) int {
	if nsarray == 0 {
		return 0
	}
	return int(msg(nsarray, "count"))
}

func arrayAt(nsarray uintptr, i int) uintptr {
	return msg(nsarray, "objectAtIndex:", uintptr(i))
}

func retain(obj uintptr) uintptr {
	if obj == 0 {
		return 0
	}
	return msg(obj, "retain")
}

func release(obj uintptr) {
	if obj != 0 {
		msg(obj, "release")
	}
}

// osType packs four ASCII bytes big-endian, matching how Apple's OSType
// FourCC pixel format constants (kCVPixelFormatType_*) are defined.
func osType(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

var (
	pixFmtNV12VideoRange = osType('4', '2', '0', 'v')
	pixFmtNV12FullRange  = osType('4', '2', '0', 'f')
	pixFmtBGRA32         = osType('B', 'G', 'R', 'A')
)

const kCVPixelBufferLockReadOnly = 1

// CoreVideo/CoreMedia C entry points, registered once per process by
// loadCoreFuncs. These are plain C functions (not objc methods), so they
// go through purego.RegisterLibFunc like any other dynamic library call.
var (
	cmSampleBufferGetImageBuffer     func(sampleBuffer uintptr) uintptr
	cvPixelBufferLockBaseAddress     func(pixelBuffer uintptr, flags uint64) int32
	cvPixelBufferUnlockBaseAddress   func(pixelBuffer uintptr, flags uint64) int32
	cvPixelBufferGetWidth            func(pixelBuffer uintptr) uintptr
	cvPixelBufferGetHeight           func(pixelBuffer uintptr) uintptr
	cvPixelBufferGetPixelFormatType  func(pixelBuffer uintptr) uint32
	cvPixelBufferIsPlanar            func(pixelBuffer uintptr) uint8
	cvPixelBufferGetPlaneCount       func(pixelBuffer uintptr) uintptr
	cvPixelBufferGetBaseAddressOfPlane func(pixelBuffer uintptr, plane uintptr) uintptr
	cvPixelBufferGetBytesPerRowOfPlane func(pixelBuffer uintptr, plane uintptr) uintptr
	cvPixelBufferGetBaseAddress      func(pixelBuffer uintptr) uintptr
	cvPixelBufferGetBytesPerRow      func(pixelBuffer uintptr) uintptr
)

var coreFuncsOnce bool

func loadCoreFuncs() {
	if coreFuncsOnce {
		return
	}
	coreFuncsOnce = true

	purego.RegisterLibFunc(&cmSampleBufferGetImageBuffer, bindings.LibCoreMedia(), "CMSampleBufferGetImageBuffer")

	cv := bindings.LibCoreVideo()
	purego.RegisterLibFunc(&cvPixelBufferLockBaseAddress, cv, "CVPixelBufferLockBaseAddress")
	purego.RegisterLibFunc(&cvPixelBufferUnlockBaseAddress, cv, "CVPixelBufferUnlockBaseAddress")
	purego.RegisterLibFunc(&cvPixelBufferGetWidth, cv, "CVPixelBufferGetWidth")
	purego.RegisterLibFunc(&cvPixelBufferGetHeight, cv, "CVPixelBufferGetHeight")
	purego.RegisterLibFunc(&cvPixelBufferGetPixelFormatType, cv, "CVPixelBufferGetPixelFormatType")
	purego.RegisterLibFunc(&cvPixelBufferIsPlanar, cv, "CVPixelBufferIsPlanar")
	purego.RegisterLibFunc(&cvPixelBufferGetPlaneCount, cv, "CVPixelBufferGetPlaneCount")
	purego.RegisterLibFunc(&cvPixelBufferGetBaseAddressOfPlane, cv, "CVPixelBufferGetBaseAddressOfPlane")
	purego.RegisterLibFunc(&cvPixelBufferGetBytesPerRowOfPlane, cv, "CVPixelBufferGetBytesPerRowOfPlane")
	purego.RegisterLibFunc(&cvPixelBufferGetBaseAddress, cv, "CVPixelBufferGetBaseAddress")
	purego.RegisterLibFunc(&cvPixelBufferGetBytesPerRow, cv, "CVPixelBufferGetBytesPerRow")
}

// newDelegateClass allocates, populates, and registers an objc subclass
// of NSObject implementing captureOutput:didOutputSampleBuffer:
// fromConnection:, whose implementation is imp. purego can't declare an
// @interface, so the class is built through the runtime instead, the
// same trick cgo-free objc bindings elsewhere in the ecosystem use for
// ad hoc delegate/callback objects.
func newDelegateClass(name string, imp uintptr) uintptr {
	super := class("NSObject")
	cls := bindings.ObjcAllocateClassPair(super, name, 0)
	if cls == 0 {
		return 0
	}

	if proto := bindings.ObjcGetProtocol("AVCaptureVideoDataOutputSampleBufferDelegate"); proto != 0 {
		bindings.ClassAddProtocolFn(cls, proto)
	}

	bindings.ClassAddMethod(cls, sel("captureOutput:didOutputSampleBuffer:fromConnection:"), imp, "v@:@@@")
	bindings.ObjcRegisterClassPair(cls)
	return cls
}
