//go:build darwin

// Package bindings loads the macOS system frameworks the Apple capture
// backend needs (AVFoundation, CoreMedia, CoreVideo, Foundation/objc) and
// registers the handful of C functions gocapture calls through purego,
// without cgo.
package bindings

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/gocapture/internal/platform"
)

// ErrNotLoaded describes use of a framework function before Load. No
// function in this package returns it: IsLoaded reports the load state,
// and ObjcMsgSend returns 0 while objc_msgSend is unresolved.
var ErrNotLoaded = errors.New("gocapture: Apple frameworks not loaded; call Load() first")

// ErrFrameworkNotFound is returned when a required framework is missing.
var ErrFrameworkNotFound = errors.New("gocapture: required framework not found")

var (
	libObjC         uintptr
	libFoundation   uintptr
	libCoreMedia    uintptr
	libCoreVideo    uintptr
	libAVFoundation uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// objc runtime entry points, resolved once Load succeeds.
var (
	ObjcGetClass    func(name string) uintptr
	SelRegisterName func(name string) uintptr
)

var objcMsgSendAddr uintptr

// ObjcMsgSend calls [receiver sel:args...] through the objc runtime's
// objc_msgSend trampoline. Every call site is responsible for knowing how
// many arguments its selector takes; objc_msgSend itself has no fixed
// signature, which is exactly why this goes through purego.SyscallN
// instead of a RegisterLibFunc-declared Go function type.
func ObjcMsgSend(receiver, sel uintptr, args ...uintptr) uintptr {
	if objcMsgSendAddr == 0 {
		return 0
	}
	callArgs := make([]uintptr, 0, 2+len(args))
	callArgs = append(callArgs, receiver, sel)
	callArgs = append(callArgs, args...)
	r1, _, _ := purego.SyscallN(objcMsgSendAddr, callArgs...)
	return r1
}

// IsLoaded reports whether the Apple frameworks have been successfully
// dlopen'd and their entry points registered.
func IsLoaded() bool {
	return loaded
}

// Load dlopens the objc runtime plus AVFoundation/CoreMedia/CoreVideo and
// registers the small set of C entry points gocapture needs. Safe to call
// more than once; only the first call does any work.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		loaded = loadErr == nil
	})
	return loadErr
}

func doLoad() error {
	var err error

	libObjC, err = open("/usr/lib/libobjc.A.dylib")
	if err != nil {
		return fmt.Errorf("loading libobjc: %w", err)
	}
	libFoundation, err = open(platform.FrameworkPath("Foundation"))
	if err != nil {
		return fmt.Errorf("loading Foundation: %w", err)
	}
	libCoreMedia, err = open(platform.FrameworkPath("CoreMedia"))
	if err != nil {
		return fmt.Errorf("loading CoreMedia: %w", err)
	}
	libCoreVideo, err = open(platform.FrameworkPath("CoreVideo"))
	if err != nil {
		return fmt.Errorf("loading CoreVideo: %w", err)
	}
	libAVFoundation, err = open(platform.FrameworkPath("AVFoundation"))
	if err != nil {
		return fmt.Errorf("loading AVFoundation: %w", err)
	}

	purego.RegisterLibFunc(&ObjcGetClassRaw, libObjC, "objc_getClass")
	purego.RegisterLibFunc(&SelRegisterNameRaw, libObjC, "sel_registerName")

	ObjcGetClass = func(name string) uintptr { return ObjcGetClassRaw(name) }
	SelRegisterName = func(name string) uintptr { return SelRegisterNameRaw(name) }

	objcMsgSendAddr, err = purego.Dlsym(libObjC, "objc_msgSend")
	if err != nil {
		return fmt.Errorf("resolving objc_msgSend: %w", err)
	}

	purego.RegisterLibFunc(&ObjcAllocateClassPair, libObjC, "objc_allocateClassPair")
	purego.RegisterLibFunc(&ObjcRegisterClassPair, libObjC, "objc_registerClassPair")
	purego.RegisterLibFunc(&ClassAddMethod, libObjC, "class_addMethod")
	purego.RegisterLibFunc(&ClassAddProtocolFn, libObjC, "class_addProtocol")
	purego.RegisterLibFunc(&ObjcGetProtocol, libObjC, "objc_getProtocol")

	return nil
}

// Additional objc runtime entry points used to build a minimal delegate
// class at runtime (spec's Apple backend needs an
// AVCaptureVideoDataOutputSampleBufferDelegate implementation; purego
// cannot declare an @interface, so the backend builds one through the
// runtime instead, the same way cgo-free objc bindings in the wider
// ecosystem do it).
var (
	ObjcAllocateClassPair func(superclass uintptr, name string, extraBytes uintptr) uintptr
	ObjcRegisterClassPair func(class uintptr)
	ClassAddMethod        func(class uintptr, sel uintptr, imp uintptr, types string) bool
	ClassAddProtocolFn    func(class uintptr, protocol uintptr) bool
	ObjcGetProtocol       func(name string) uintptr
)

// Raw purego-registered function pointers for objc_getClass and
// sel_registerName. objc_msgSend is not registered here: it varies by
// selector arity, so it goes through ObjcMsgSend's purego.SyscallN call
// instead.
var (
	ObjcGetClassRaw    func(name string) uintptr
	SelRegisterNameRaw func(name string) uintptr
)

func open(path string) (uintptr, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%v)", ErrFrameworkNotFound, path, err)
	}
	return lib, nil
}

// LibObjC returns the libobjc handle, 0 if not loaded.
func LibObjC() uintptr { return libObjC }

// LibAVFoundation returns the AVFoundation framework handle, 0 if not loaded.
func LibAVFoundation() uintptr { return libAVFoundation }

// LibCoreMedia returns the CoreMedia framework handle, 0 if not loaded.
func LibCoreMedia() uintptr { return libCoreMedia }

// LibCoreVideo returns the CoreVideo framework handle, 0 if not loaded.
func LibCoreVideo() uintptr { return libCoreVideo }

// LibFoundation returns the Foundation framework handle, 0 if not loaded.
func LibFoundation() uintptr { return libFoundation }
