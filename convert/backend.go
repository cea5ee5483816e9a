package convert

import (
	"sync"

	"github.com/obinnaokechukwu/gocapture/internal/platform"
)

// Backend identifies a conversion kernel implementation (spec §4.3.7-8).
type Backend int

const (
	Auto Backend = iota
	CPU             // disables all SIMD; scalar only
	AVX2
	AppleAccelerate
	NEON
)

func (b Backend) String() string {
	switch b {
	case Auto:
		return "Auto"
	case CPU:
		return "CPU"
	case AVX2:
		return "AVX2"
	case AppleAccelerate:
		return "AppleAccelerate"
	case NEON:
		return "NEON"
	default:
		return "Unknown"
	}
}

// backendState tracks which kernels are currently enabled. Auto enables
// every backend the host supports; selecting one specific backend disables
// the others; CPU disables all SIMD and Accelerate (spec §4.3.7).
type backendState struct {
	mu              sync.Mutex
	avx2Enabled     bool
	neonEnabled     bool
	accelEnabled    bool
	explicitBackend Backend
}

var state = newBackendState()

func newBackendState() *backendState {
	s := &backendState{explicitBackend: Auto}
	s.applyAuto()
	return s
}

func (s *backendState) applyAuto() {
	s.avx2Enabled = platform.HasAVX2()
	s.neonEnabled = platform.HasNEON()
	s.accelEnabled = platform.IsApple()
}

// SetConvertBackend selects the conversion backend, per spec §4.3.7 /
// §6.1. Auto re-enables every backend the host supports; any specific
// backend disables the others; CPU disables all SIMD (and Accelerate).
// Returns false if the requested backend is not available on this host.
func SetConvertBackend(b Backend) bool {
	state.mu.Lock()
	defer state.mu.Unlock()

	switch b {
	case Auto:
		state.explicitBackend = Auto
		state.applyAuto()
		return true
	case CPU:
		state.explicitBackend = CPU
		state.avx2Enabled, state.neonEnabled, state.accelEnabled = false, false, false
		return true
	case AVX2:
		if !platform.HasAVX2() {
			return false
		}
		state.explicitBackend = AVX2
		state.avx2Enabled, state.neonEnabled, state.accelEnabled = true, false, false
		return true
	case NEON:
		if !platform.HasNEON() {
			return false
		}
		state.explicitBackend = NEON
		state.avx2Enabled, state.neonEnabled, state.accelEnabled = false, true, false
		return true
	case AppleAccelerate:
		if !platform.IsApple() {
			return false
		}
		state.explicitBackend = AppleAccelerate
		state.avx2Enabled, state.neonEnabled, state.accelEnabled = false, false, true
		return true
	default:
		return false
	}
}

// GetConvertBackend returns the backend selected by the last
// SetConvertBackend call (Auto by default).
func GetConvertBackend() Backend {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.explicitBackend
}

// HasAVX2 reports whether the host CPU supports AVX2 at all, independent
// of whether it is currently enabled.
func HasAVX2() bool { return platform.HasAVX2() }

// HasNEON reports whether NEON kernels are available on this host.
func HasNEON() bool { return platform.HasNEON() }

// HasAppleAccelerate reports whether the host is an Apple OS, where the
// Accelerate framework is always present.
func HasAppleAccelerate() bool { return platform.IsApple() }

// CanUseAVX2 reports whether AVX2 is both available and currently enabled.
func CanUseAVX2() bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.avx2Enabled
}

// CanUseNEON reports whether NEON is both available and currently enabled.
func CanUseNEON() bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.neonEnabled
}

// CanUseAppleAccelerate reports whether Accelerate is both available and
// currently enabled.
func CanUseAppleAccelerate() bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.accelEnabled
}

// selected returns the backend dispatch should actually use for the next
// conversion, in the priority order of spec §4.3.7: AppleAccelerate ->
// AVX2 -> NEON -> scalar.
func selected() Backend {
	state.mu.Lock()
	defer state.mu.Unlock()
	switch {
	case state.accelEnabled:
		return AppleAccelerate
	case state.avx2Enabled:
		return AVX2
	case state.neonEnabled:
		return NEON
	default:
		return CPU
	}
}
