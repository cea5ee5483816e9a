//go:build amd64

// AVX2 kernel entry points. Dispatch and capability detection (CPUID leaf
// 7 EBX bit 5, gated by OSXSAVE/XGETBV via golang.org/x/sys/cpu) are real;
// see internal/platform.HasAVX2 and dispatch.go's registration table.
// ColorShuffle and NV12ToRGB register batch.go's genuinely distinct
// fixed-width kernels rather than the scalar functions. I420/YUYV/UYVY are
// left unregistered (nil): dispatch.go already falls back to scalar for a
// nil entry, which is the honest thing to do until a real batch rewrite of
// those three exists — aliasing them to the scalar function here would
// make the §8.2 "scalar vs SIMD equivalence" property vacuous for formats
// this backend doesn't actually implement a separate path for.
package convert

func init() {
	avx2ColorShuffle = batchColorShuffle
	avx2NV12ToRGB = batchNV12ToRGB
}
