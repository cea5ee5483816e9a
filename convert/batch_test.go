package convert

import "testing"

// TestBatchColorShuffleMatchesScalar exercises the §8.2 scalar-vs-SIMD
// equivalence property against a genuinely distinct implementation
// (batch.go), not an alias of scalarColorShuffle.
func TestBatchColorShuffleMatchesScalar(t *testing.T) {
	const width, height = 11, 3 // not a multiple of colorShuffleBatchWidth
	src := make([]byte, width*height*4)
	for i := range src {
		src[i] = byte(i * 7)
	}

	cases := []struct {
		inCh, outCh  int
		swapRB, flip bool
	}{
		{3, 3, false, false},
		{3, 3, true, false},
		{3, 4, false, true},
		{4, 3, true, false},
		{4, 4, true, true},
	}

	for _, c := range cases {
		srcStride := width * c.inCh
		dstStride := width * c.outCh
		want := make([]byte, dstStride*height)
		got := make([]byte, dstStride*height)

		scalarColorShuffle(want, src, width, height, srcStride, dstStride, c.inCh, c.outCh, c.swapRB, c.flip)
		batchColorShuffle(got, src, width, height, srcStride, dstStride, c.inCh, c.outCh, c.swapRB, c.flip)

		for i := range want {
			if want[i] != got[i] {
				t.Fatalf("case %+v: byte %d differs: scalar=%#x batch=%#x", c, i, want[i], got[i])
			}
		}
	}
}

func TestBatchNV12ToRGBMatchesScalar(t *testing.T) {
	const width, height = 13, 4 // not a multiple of yuvBatchWidth, even height
	yStride := width
	uvStride := (width + 1) / 2 * 2 // one U,V pair per two columns, odd width rounded up
	yPlane := make([]byte, yStride*height)
	uvPlane := make([]byte, uvStride*(height/2))
	for i := range yPlane {
		yPlane[i] = byte(16 + i%200)
	}
	for i := range uvPlane {
		uvPlane[i] = byte(64 + i%128)
	}

	for _, bgr := range []bool{false, true} {
		for _, alpha := range []bool{false, true} {
			for _, flip := range []bool{false, true} {
				bpp := outBytesPerPixel(alpha)
				dstStride := width * bpp
				want := make([]byte, dstStride*height)
				got := make([]byte, dstStride*height)

				scalarNV12ToRGB(want, yPlane, uvPlane, width, height, yStride, uvStride, dstStride, bgr, alpha, flip, DefaultFlag)
				batchNV12ToRGB(got, yPlane, uvPlane, width, height, yStride, uvStride, dstStride, bgr, alpha, flip, DefaultFlag)

				for i := range want {
					if want[i] != got[i] {
						t.Fatalf("bgr=%v alpha=%v flip=%v: byte %d differs: scalar=%#x batch=%#x", bgr, alpha, flip, i, want[i], got[i])
					}
				}
			}
		}
	}
}
