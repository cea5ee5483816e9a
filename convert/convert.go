// Package convert implements the pixel-conversion engine: YUV->RGB
// colorspace math, RGB<->RGB channel shuffling, the backend dispatch
// table (scalar/AVX2/NEON/AppleAccelerate), and the InplaceConvertFrame
// decision tree that ties them to a *frame.VideoFrame.
//
// Grounded on the teacher's scaler.go (a thin wrapper choosing between a
// handful of SwScale paths by format pair) generalized to gocapture's own
// closed conversion matrix and fixed-point math instead of delegating to
// libswscale.
package convert

import (
	"github.com/obinnaokechukwu/gocapture/alloc"
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
)

const dstAlignment = 32

// destStride returns the output row stride for an RGB-family destination:
// 4*width when the destination carries alpha, else width*3 rounded up to
// a 32-byte boundary.
func destStride(width int, alpha bool) int {
	if alpha {
		return width * 4
	}
	n := width * 3
	if rem := n % dstAlignment; rem != 0 {
		n += dstAlignment - rem
	}
	return n
}

// InplaceConvertFrame mutates f in place to hold pixel data in toFmt,
// optionally flipped vertically, per the decision tree below. It reports
// whether the conversion was performed; false means f is untouched and
// the caller should fall back to emitting f in its current format.
//
//   - same format, no flip requested (or already YUV): no-op, returns true.
//   - same format, flip requested, RGB-like: rows are copied in reverse
//     into a freshly sized buffer.
//   - YUV source, YUV destination: unsupported, returns false.
//   - YUV source, RGB destination: runs the matching YUV->RGB kernel.
//   - RGB source, YUV destination: unsupported, returns false.
//   - RGB source, RGB destination: runs colorShuffle.
func InplaceConvertFrame(f *frame.VideoFrame, toFmt pixelformat.PixelFormat, flip bool) bool {
	from := f.PixelFormat

	if from == toFmt {
		if !flip || !pixelformat.IsRGB(from) {
			return true
		}
		return flipInPlace(f)
	}

	fromYUV, toYUV := pixelformat.IsYUV(from), pixelformat.IsYUV(toFmt)

	switch {
	case fromYUV && toYUV:
		return false
	case fromYUV && !toYUV:
		return convertYUVToRGB(f, toFmt, flip)
	case !fromYUV && toYUV:
		return false
	default:
		return convertRGBToRGB(f, toFmt, flip)
	}
}

// flipInPlace reverses row order of an RGB-like frame's single plane. The
// reversed rows are written into a scratch allocator first rather than
// straight into f's own buffer: when f already owns an Allocator (a prior
// conversion's output being flipped again), reusing that same buffer as
// both source and destination would have scalarFlipOnly read a row after
// an earlier iteration had already overwritten it. Borrowing a scratch
// slot gives the flip a backing array that can never alias f.Data[0].
func flipInPlace(f *frame.VideoFrame) bool {
	stride := f.Stride[0]
	size := stride * f.Height

	pool, release := alloc.Shared()
	defer release()
	scratch, relScratch := pool.Acquire()
	defer relScratch()

	scratch.Resize(size)
	tmp := scratch.Data()
	if tmp == nil {
		return false
	}
	scalarFlipOnly(tmp, f.Data[0], f.Height, stride)

	a := f.Allocator
	if a == nil {
		a = alloc.New()
	}
	a.Resize(size)
	dst := a.Data()
	if dst == nil {
		return false
	}
	copy(dst, tmp)

	f.Data = [3][]byte{dst}
	f.Stride = [3]int{stride}
	f.Allocator = a
	f.SizeInBytes = len(dst)
	flipOrientation(f)
	return true
}

func flipOrientation(f *frame.VideoFrame) {
	if f.Orientation == frame.TopToBottom {
		f.Orientation = frame.BottomToTop
	} else {
		f.Orientation = frame.TopToBottom
	}
}

// convertYUVToRGB dispatches to the kernel matching from's YUV layout,
// writing into a freshly sized, alpha/stride-correct destination buffer.
func convertYUVToRGB(f *frame.VideoFrame, toFmt pixelformat.PixelFormat, flip bool) bool {
	width, height := f.Width, f.Height
	alpha := pixelformat.HasAlpha(toFmt)
	bgr := pixelformat.IsBGRLike(toFmt)
	flagv := flagFor(f.PixelFormat)
	dStride := destStride(width, alpha)

	a := alloc.New()
	a.Resize(dStride * height)
	dst := a.Data()
	if dst == nil {
		return false
	}

	switch {
	case pixelformat.Include(f.PixelFormat, pixelformat.NV12):
		dispatchNV12ToRGB(dst, f.Data[0], f.Data[1], width, height, f.Stride[0], f.Stride[1], dStride, bgr, alpha, flip, flagv)
	case pixelformat.Include(f.PixelFormat, pixelformat.I420):
		dispatchI420ToRGB(dst, f.Data[0], f.Data[1], f.Data[2], width, height, f.Stride[0], f.Stride[1], f.Stride[2], dStride, bgr, alpha, flip, flagv)
	case pixelformat.Include(f.PixelFormat, pixelformat.YUYV):
		dispatchYUYVToRGB(dst, f.Data[0], width, height, f.Stride[0], dStride, bgr, alpha, flip, flagv)
	case pixelformat.Include(f.PixelFormat, pixelformat.UYVY):
		dispatchUYVYToRGB(dst, f.Data[0], width, height, f.Stride[0], dStride, bgr, alpha, flip, flagv)
	default:
		return false
	}

	f.PixelFormat = toFmt
	f.Data = [3][]byte{dst}
	f.Stride = [3]int{dStride}
	f.Allocator = a
	f.SizeInBytes = len(dst)
	if flip {
		flipOrientation(f)
	}
	return true
}

// convertRGBToRGB runs colorShuffle<inCh,outCh,swapRB> between two
// RGB-family formats, writing into a freshly sized destination buffer.
func convertRGBToRGB(f *frame.VideoFrame, toFmt pixelformat.PixelFormat, flip bool) bool {
	width, height := f.Width, f.Height
	inCh := pixelformat.Channels(f.PixelFormat)
	outCh := pixelformat.Channels(toFmt)
	swapRB := pixelformat.IsBGRLike(f.PixelFormat) != pixelformat.IsBGRLike(toFmt)
	alpha := pixelformat.HasAlpha(toFmt)
	dStride := destStride(width, alpha)

	a := alloc.New()
	a.Resize(dStride * height)
	dst := a.Data()
	if dst == nil {
		return false
	}

	dispatchColorShuffle(dst, f.Data[0], width, height, f.Stride[0], dStride, inCh, outCh, swapRB, flip)

	f.PixelFormat = toFmt
	f.Data = [3][]byte{dst}
	f.Stride = [3]int{dStride}
	f.Allocator = a
	f.SizeInBytes = len(dst)
	if flip {
		flipOrientation(f)
	}
	return true
}

// flagFor derives the ConvertFlag a YUV source format carries, per its
// full-range bit; the matrix comes from DefaultFlag (BT601 unless the
// caller changed it through SetDefaultFlag), since no pixel format tag
// distinguishes BT601 from BT709.
func flagFor(f pixelformat.PixelFormat) Flag {
	flag := DefaultFlag
	if pixelformat.IsFullRange(f) {
		flag.Range = FullRange
	} else {
		flag.Range = VideoRange
	}
	return flag
}

// SetDefaultFlag overrides the BT601/BT709 matrix used for every
// subsequent YUV->RGB conversion; range is still taken from the source
// pixel format's full-range bit.
func SetDefaultFlag(matrix ColorMatrix) {
	DefaultFlag = Flag{Matrix: matrix, Range: DefaultFlag.Range}
}
