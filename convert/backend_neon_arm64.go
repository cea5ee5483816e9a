//go:build arm64

// NEON kernel entry points. NEON is mandatory on AArch64 per spec §9, so
// capability detection selects this backend on arm64 unless the
// higher-priority AppleAccelerate backend is enabled (selected() in
// backend.go).
// ColorShuffle and NV12ToRGB register batch.go's genuinely distinct
// fixed-width kernels, the same ones backend_avx2_amd64.go registers,
// since the batch rewrite is plain Go with no architecture-specific
// instructions (see batch.go). I420/YUYV/UYVY are left unregistered (nil)
// for the same reason given in backend_avx2_amd64.go: dispatch.go's
// existing nil fallback to scalar is honest, aliasing them to scalar
// directly is not.
package convert

func init() {
	neonColorShuffle = batchColorShuffle
	neonNV12ToRGB = batchNV12ToRGB
}
