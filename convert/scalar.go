// Scalar kernels: the reference implementation every other backend must
// match byte-for-byte (modulo the documented ±1 LSB Accelerate tolerance).
// Grounded on other_examples/Kitonae-WHEP__i420_to_bgra_fallback.go's
// "scalar BT.601 integer YUV->RGB with rounding+clamp" shape, generalized
// to the spec's own coefficient table (§4.3.2) and all four source YUV
// layouts instead of one hardcoded path.
package convert

// writeRGBPixel writes one output pixel's R,G,B(,A) bytes in the order dst
// format requires: B-first when bgr is true, R-first otherwise. Alpha, if
// present, is always the 4th byte and is always 0xFF for a converted
// pixel, per spec §4.3.2.
func writeRGBPixel(dst []byte, off int, r, g, b byte, bgr, alpha bool) {
	if bgr {
		dst[off], dst[off+1], dst[off+2] = b, g, r
	} else {
		dst[off], dst[off+1], dst[off+2] = r, g, b
	}
	if alpha {
		dst[off+3] = 0xFF
	}
}

// outBytesPerPixel returns 4 if alpha else 3.
func outBytesPerPixel(alpha bool) int {
	if alpha {
		return 4
	}
	return 3
}

// dstRow returns the destination row index for row `y` of `height` rows,
// honoring the height-sign flip convention of spec §4.3.1: flip=true
// writes destination rows in reverse order while source is read in
// natural order.
func dstRow(y, height int, flip bool) int {
	if flip {
		return height - 1 - y
	}
	return y
}

// scalarFlipOnly reverses row order for a same-format RGB-like buffer
// (spec §4.3, "pure flip of same-format RGB: copy rows in reverse").
func scalarFlipOnly(dst, src []byte, height, stride int) {
	for y := 0; y < height; y++ {
		srcRow := src[y*stride : y*stride+stride]
		dstOff := (height - 1 - y) * stride
		copy(dst[dstOff:dstOff+stride], srcRow)
	}
}

// scalarColorShuffle implements colorShuffle<InChannels,OutChannels,SwapRB>
// (spec §4.3.5): permute channel order between {3,4}-channel RGB-family
// formats, optionally swapping R/B, optionally flipping vertically. Going
// 3->4 writes 0xFF alpha; going 4->3 drops the alpha byte.
func scalarColorShuffle(dst, src []byte, width, height, srcStride, dstStride, inCh, outCh int, swapRB, flip bool) {
	for y := 0; y < height; y++ {
		srcOff := y * srcStride
		dstOff := dstRow(y, height, flip) * dstStride
		for x := 0; x < width; x++ {
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

// scalarNV12ToRGB converts semi-planar 4:2:0 NV12 (Y plane + interleaved UV
// plane) to an RGB-family output, replicating each chroma sample across its
// 2x2 Y block (spec §4.3.3).
func scalarNV12ToRGB(dst []byte, yPlane, uvPlane []byte, width, height, yStride, uvStride, dstStride int, bgr, alpha, flip bool, flag Flag) {
	c := coefficientsFor(flag)
	bpp := outBytesPerPixel(alpha)

	for y := 0; y < height; y++ {
		yRow := yPlane[y*yStride:]
		uvRow := uvPlane[(y/2)*uvStride:]
		dstOff := dstRow(y, height, flip) * dstStride
		for x := 0; x < width; x++ {
			Y := int32(yRow[x])
			uvIdx := (x / 2) * 2
			U := int32(uvRow[uvIdx])
			V := int32(uvRow[uvIdx+1])
			r, g, b := yuvToRGB(c, Y, U, V)
			writeRGBPixel(dst, dstOff+x*bpp, r, g, b, bgr, alpha)
		}
	}
}

// scalarI420ToRGB converts planar 4:2:0 I420 (separate Y, U, V planes) to
// an RGB-family output with the same 2x2 chroma replication as NV12.
func scalarI420ToRGB(dst []byte, yPlane, uPlane, vPlane []byte, width, height, yStride, uStride, vStride, dstStride int, bgr, alpha, flip bool, flag Flag) {
	c := coefficientsFor(flag)
	bpp := outBytesPerPixel(alpha)

	for y := 0; y < height; y++ {
		yRow := yPlane[y*yStride:]
		uRow := uPlane[(y/2)*uStride:]
		vRow := vPlane[(y/2)*vStride:]
		dstOff := dstRow(y, height, flip) * dstStride
		for x := 0; x < width; x++ {
			Y := int32(yRow[x])
			U := int32(uRow[x/2])
			V := int32(vRow[x/2])
			r, g, b := yuvToRGB(c, Y, U, V)
			writeRGBPixel(dst, dstOff+x*bpp, r, g, b, bgr, alpha)
		}
	}
}

// scalarYUYVToRGB converts packed 4:2:2 YUYV ("Y0 U Y1 V" per 4 bytes) to
// an RGB-family output. Each chroma pair is replicated across its two
// horizontally adjacent Y samples with no interpolation (spec §4.3.3-4).
// An odd width drops the synthesized second pixel of the last pair, per
// the open question in spec §9 resolved in DESIGN.md.
func scalarYUYVToRGB(dst, src []byte, width, height, srcStride, dstStride int, bgr, alpha, flip bool, flag Flag) {
	yuyvLikeToRGB(dst, src, width, height, srcStride, dstStride, bgr, alpha, flip, flag, 0, 1, 2, 3)
}

// scalarUYVYToRGB converts packed 4:2:2 UYVY ("U Y0 V Y1" per 4 bytes).
func scalarUYVYToRGB(dst, src []byte, width, height, srcStride, dstStride int, bgr, alpha, flip bool, flag Flag) {
	yuyvLikeToRGB(dst, src, width, height, srcStride, dstStride, bgr, alpha, flip, flag, 1, 0, 3, 2)
}

// yuyvLikeToRGB is shared by YUYV and UYVY: the two formats differ only in
// which byte offset within each 4-byte group holds Y0, U, Y1, V.
func yuyvLikeToRGB(dst, src []byte, width, height, srcStride, dstStride int, bgr, alpha, flip bool, flag Flag, y0off, uOff, y1off, vOff int) {
	c := coefficientsFor(flag)
	bpp := outBytesPerPixel(alpha)
	pairs := (width + 1) / 2 // odd width: last pair's second pixel is a duplicate

	for y := 0; y < height; y++ {
		srcRow := src[y*srcStride:]
		dstOff := dstRow(y, height, flip) * dstStride
		for p := 0; p < pairs; p++ {
			base := p * 4
			Y0 := int32(srcRow[base+y0off])
			U := int32(srcRow[base+uOff])
			Y1 := int32(srcRow[base+y1off])
			V := int32(srcRow[base+vOff])

			x0 := p * 2
			r0, g0, b0 := yuvToRGB(c, Y0, U, V)
			writeRGBPixel(dst, dstOff+x0*bpp, r0, g0, b0, bgr, alpha)

			x1 := x0 + 1
			if x1 >= width {
				continue // odd width: drop the synthesized second column
			}
			r1, g1, b1 := yuvToRGB(c, Y1, U, V)
			writeRGBPixel(dst, dstOff+x1*bpp, r1, g1, b1, bgr, alpha)
		}
	}
}
