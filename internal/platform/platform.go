// Package platform provides platform detection and CPU capability probing
// for gocapture. It determines which capture backend and which
// pixel-conversion kernel are available based on the operating system and
// architecture the binary was built for.
package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// SupportsStructByValue indicates whether purego on this platform can pass
// and return structs by value across the native call boundary (used by the
// Apple backend for CMTime/CGSize-shaped AVFoundation calls). Only Darwin
// amd64/arm64 supports this in purego; everywhere else struct-by-value calls
// would panic, so the Apple backend is build-tagged out elsewhere.
const SupportsStructByValue = runtime.GOOS == "darwin" &&
	(runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64")

// Is64Bit indicates whether the platform is 64-bit. gocapture only targets
// 64-bit platforms: the backends rely on purego (Darwin), COM vtable calls
// (Windows) or 64-bit ioctl struct layouts (Linux) that are not worth
// replicating for 32-bit targets.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// GOOS returns the current operating system.
func GOOS() string {
	return runtime.GOOS
}

// GOARCH returns the current architecture.
func GOARCH() string {
	return runtime.GOARCH
}

// IsApple reports whether the host OS is Darwin (macOS). BackendApple and
// the AppleAccelerate conversion backend are only ever compiled in on this
// platform.
func IsApple() bool {
	return runtime.GOOS == "darwin"
}

// FrameworkPath returns the dlopen-able path for a macOS system framework,
// e.g. FrameworkPath("AVFoundation") ->
// "/System/Library/Frameworks/AVFoundation.framework/AVFoundation".
func FrameworkPath(name string) string {
	return fmt.Sprintf("/System/Library/Frameworks/%s.framework/%s", name, name)
}

var (
	avx2Once sync.Once
	avx2Has  bool

	neonOnce sync.Once
	neonHas  bool
)

// HasAVX2 reports whether the host CPU supports AVX2, cached after the
// first call. Grounded on the spec's own detection recipe (CPUID leaf 7,
// EBX bit 5, gated by OSXSAVE/XGETBV) which is exactly what
// golang.org/x/sys/cpu's cpu.X86.HasAVX2 computes internally; only
// meaningful on amd64.
func HasAVX2() bool {
	avx2Once.Do(func() {
		avx2Has = runtime.GOARCH == "amd64" && cpu.X86.HasAVX2
	})
	return avx2Has
}

// HasNEON reports whether NEON kernels can run on this host. NEON is
// mandatory on AArch64 (arm64); gocapture only targets 64-bit platforms
// (see Is64Bit), so this reduces to "are we on arm64".
func HasNEON() bool {
	neonOnce.Do(func() {
		neonHas = runtime.GOARCH == "arm64"
	})
	return neonHas
}
