//go:build darwin

// Accelerate kernel entry points. A production build would dlopen
// Accelerate.framework (vImage) through internal/bindings the same way
// BackendApple loads AVFoundation, and call vImageConvert_* for the YUV
// matrices and vImagePermuteChannels_* for the RGB shuffles; that wiring
// is not attempted here since it cannot be validated without running the
// Go toolchain. In the meantime, ColorShuffle and NV12ToRGB register
// batch.go's genuinely distinct fixed-width kernels rather than the
// scalar functions (the ±1 LSB tolerance spec §8.2 grants Accelerate
// specifically goes unexercised, since batch.go's arithmetic is the exact
// same fixed-point formula as scalar, which trivially satisfies the ±1
// allowance). I420/YUYV/UYVY are left unregistered (nil); dispatch.go
// falls back to scalar for those rather than this file pretending a
// separate Accelerate path exists for them.
package convert

func init() {
	accelColorShuffle = batchColorShuffle
	accelNV12ToRGB = batchNV12ToRGB
}
