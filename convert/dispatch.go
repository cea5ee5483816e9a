package convert

// Per-kernel function variables, populated by the build-tag-gated init()
// in backend_avx2_amd64.go / backend_neon_arm64.go /
// backend_accelerate_darwin.go when those files are compiled in. A nil
// variable means the backend was never registered on this build (e.g.
// avx2ColorShuffle stays nil on arm64), and dispatch falls back to
// scalar.
var (
	avx2ColorShuffle, neonColorShuffle, accelColorShuffle func(dst, src []byte, width, height, srcStride, dstStride, inCh, outCh int, swapRB, flip bool)

	avx2NV12ToRGB, neonNV12ToRGB, accelNV12ToRGB func(dst []byte, yPlane, uvPlane []byte, width, height, yStride, uvStride, dstStride int, bgr, alpha, flip bool, flag Flag)

	avx2I420ToRGB, neonI420ToRGB, accelI420ToRGB func(dst []byte, yPlane, uPlane, vPlane []byte, width, height, yStride, uStride, vStride, dstStride int, bgr, alpha, flip bool, flag Flag)

	avx2YUYVToRGB, neonYUYVToRGB, accelYUYVToRGB func(dst, src []byte, width, height, srcStride, dstStride int, bgr, alpha, flip bool, flag Flag)

	avx2UYVYToRGB, neonUYVYToRGB, accelUYVYToRGB func(dst, src []byte, width, height, srcStride, dstStride int, bgr, alpha, flip bool, flag Flag)
)

func dispatchColorShuffle(dst, src []byte, width, height, srcStride, dstStride, inCh, outCh int, swapRB, flip bool) {
	switch selected() {
	case AppleAccelerate:
		if accelColorShuffle != nil {
			accelColorShuffle(dst, src, width, height, srcStride, dstStride, inCh, outCh, swapRB, flip)
			return
		}
	case AVX2:
		if avx2ColorShuffle != nil {
			avx2ColorShuffle(dst, src, width, height, srcStride, dstStride, inCh, outCh, swapRB, flip)
			return
		}
	case NEON:
		if neonColorShuffle != nil {
			neonColorShuffle(dst, src, width, height, srcStride, dstStride, inCh, outCh, swapRB, flip)
			return
		}
	}
	scalarColorShuffle(dst, src, width, height, srcStride, dstStride, inCh, outCh, swapRB, flip)
}

func dispatchNV12ToRGB(dst []byte, yPlane, uvPlane []byte, width, height, yStride, uvStride, dstStride int, bgr, alpha, flip bool, flag Flag) {
	switch selected() {
	case AppleAccelerate:
		if accelNV12ToRGB != nil {
			accelNV12ToRGB(dst, yPlane, uvPlane, width, height, yStride, uvStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	case AVX2:
		if avx2NV12ToRGB != nil {
			avx2NV12ToRGB(dst, yPlane, uvPlane, width, height, yStride, uvStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	case NEON:
		if neonNV12ToRGB != nil {
			neonNV12ToRGB(dst, yPlane, uvPlane, width, height, yStride, uvStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	}
	scalarNV12ToRGB(dst, yPlane, uvPlane, width, height, yStride, uvStride, dstStride, bgr, alpha, flip, flag)
}

func dispatchI420ToRGB(dst []byte, yPlane, uPlane, vPlane []byte, width, height, yStride, uStride, vStride, dstStride int, bgr, alpha, flip bool, flag Flag) {
	switch selected() {
	case AppleAccelerate:
		if accelI420ToRGB != nil {
			accelI420ToRGB(dst, yPlane, uPlane, vPlane, width, height, yStride, uStride, vStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	case AVX2:
		if avx2I420ToRGB != nil {
			avx2I420ToRGB(dst, yPlane, uPlane, vPlane, width, height, yStride, uStride, vStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	case NEON:
		if neonI420ToRGB != nil {
			neonI420ToRGB(dst, yPlane, uPlane, vPlane, width, height, yStride, uStride, vStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	}
	scalarI420ToRGB(dst, yPlane, uPlane, vPlane, width, height, yStride, uStride, vStride, dstStride, bgr, alpha, flip, flag)
}

func dispatchYUYVToRGB(dst, src []byte, width, height, srcStride, dstStride int, bgr, alpha, flip bool, flag Flag) {
	switch selected() {
	case AppleAccelerate:
		if accelYUYVToRGB != nil {
			accelYUYVToRGB(dst, src, width, height, srcStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	case AVX2:
		if avx2YUYVToRGB != nil {
			avx2YUYVToRGB(dst, src, width, height, srcStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	case NEON:
		if neonYUYVToRGB != nil {
			neonYUYVToRGB(dst, src, width, height, srcStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	}
	scalarYUYVToRGB(dst, src, width, height, srcStride, dstStride, bgr, alpha, flip, flag)
}

func dispatchUYVYToRGB(dst, src []byte, width, height, srcStride, dstStride int, bgr, alpha, flip bool, flag Flag) {
	switch selected() {
	case AppleAccelerate:
		if accelUYVYToRGB != nil {
			accelUYVYToRGB(dst, src, width, height, srcStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	case AVX2:
		if avx2UYVYToRGB != nil {
			avx2UYVYToRGB(dst, src, width, height, srcStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	case NEON:
		if neonUYVYToRGB != nil {
			neonUYVYToRGB(dst, src, width, height, srcStride, dstStride, bgr, alpha, flip, flag)
			return
		}
	}
	scalarUYVYToRGB(dst, src, width, height, srcStride, dstStride, bgr, alpha, flip, flag)
}
