// Batch kernels: fixed-width, structure-of-arrays reimplementations of the
// scalar kernels in scalar.go, grounded on
// _examples/gogpu-gg/internal/wide's "use simple loops over fixed-size
// arrays for auto-vectorization, avoid unsafe and assembly" design
// philosophy. These are genuine, independently-written code paths rather
// than aliases of the scalar functions — registered as this module's real
// AVX2/NEON/Accelerate entry points for the two formats where a batch
// rewrite is low-risk without ever compiling or running this code (see
// DESIGN.md for why the YUV 4:2:2 and planar I420 kernels are left
// unregistered instead of faked the same way).
package convert

const colorShuffleBatchWidth = 8
const yuvBatchWidth = 8

// batchColorShuffle reimplements scalarColorShuffle (spec §4.3.5) by
// loading colorShuffleBatchWidth pixels' channels into fixed-size arrays,
// operating on the whole array at once, then storing the batch, with a
// scalar tail loop for the remainder.
func batchColorShuffle(dst, src []byte, width, height, srcStride, dstStride, inCh, outCh int, swapRB, flip bool) {
	var rs, gs, bs, as [colorShuffleBatchWidth]byte

	for y := 0; y < height; y++ {
		srcOff := y * srcStride
		dstOff := dstRow(y, height, flip) * dstStride

		x := 0
		for ; x+colorShuffleBatchWidth <= width; x += colorShuffleBatchWidth {
			for i := 0; i < colorShuffleBatchWidth; i++ {
				so := srcOff + (x+i)*inCh
				rs[i], gs[i], bs[i] = src[so], src[so+1], src[so+2]
				if inCh == 4 {
					as[i] = src[so+3]
				}
			}
			if swapRB {
				rs, bs = bs, rs
			}
			for i := 0; i < colorShuffleBatchWidth; i++ {
				do := dstOff + (x+i)*outCh
				dst[do], dst[do+1], dst[do+2] = rs[i], gs[i], bs[i]
				if outCh == 4 {
					if inCh == 4 {
						dst[do+3] = as[i]
					} else {
						dst[do+3] = 0xFF
					}
				}
			}
		}
		for ; x < width; x++ {
			so := srcOff + x*inCh
			do := dstOff + x*outCh
			r, g, b := src[so], src[so+1], src[so+2]
			if swapRB {
				r, b = b, r
			}
			dst[do], dst[do+1], dst[do+2] = r, g, b
			if outCh == 4 {
				if inCh == 4 {
					dst[do+3] = src[so+3]
				} else {
					dst[do+3] = 0xFF
				}
			}
		}
	}
}

// batchNV12ToRGB reimplements scalarNV12ToRGB (spec §4.3.3) the same way:
// a batch of yuvBatchWidth samples is loaded into fixed-size Y/U/V arrays,
// converted element-by-element through the same fixed-point coefficients
// as the scalar path, then stored, with a scalar tail loop for the
// remainder.
func batchNV12ToRGB(dst []byte, yPlane, uvPlane []byte, width, height, yStride, uvStride, dstStride int, bgr, alpha, flip bool, flag Flag) {
	c := coefficientsFor(flag)
	bpp := outBytesPerPixel(alpha)

	var ys, us, vs [yuvBatchWidth]int32
	var rs, gs, bs [yuvBatchWidth]uint8

	for y := 0; y < height; y++ {
		yRow := yPlane[y*yStride:]
		uvRow := uvPlane[(y/2)*uvStride:]
		dstOff := dstRow(y, height, flip) * dstStride

		x := 0
		for ; x+yuvBatchWidth <= width; x += yuvBatchWidth {
			for i := 0; i < yuvBatchWidth; i++ {
				px := x + i
				uvIdx := (px / 2) * 2
				ys[i] = int32(yRow[px])
				us[i] = int32(uvRow[uvIdx])
				vs[i] = int32(uvRow[uvIdx+1])
			}
			for i := 0; i < yuvBatchWidth; i++ {
				rs[i], gs[i], bs[i] = yuvToRGB(c, ys[i], us[i], vs[i])
			}
			for i := 0; i < yuvBatchWidth; i++ {
				writeRGBPixel(dst, dstOff+(x+i)*bpp, rs[i], gs[i], bs[i], bgr, alpha)
			}
		}
		for ; x < width; x++ {
			uvIdx := (x / 2) * 2
			r, g, b := yuvToRGB(c, int32(yRow[x]), int32(uvRow[uvIdx]), int32(uvRow[uvIdx+1]))
			writeRGBPixel(dst, dstOff+x*bpp, r, g, b, bgr, alpha)
		}
	}
}
