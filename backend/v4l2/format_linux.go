//go:build linux

package v4l2

import "github.com/obinnaokechukwu/gocapture/pixelformat"

func fourcc(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

var (
	fourccNV12  = fourcc('N', 'V', '1', '2')
	fourccYUV420 = fourcc('Y', 'U', '1', '2') // I420, planar Y/Cb/Cr
	fourccYUYV  = fourcc('Y', 'U', 'Y', 'V')
	fourccUYVY  = fourcc('U', 'Y', 'V', 'Y')
	fourccRGB24 = fourcc('R', 'G', 'B', '3')
	fourccBGR24 = fourcc('B', 'G', 'R', '3')
)

// negotiationOrder is tried, in order, when the caller hasn't pinned
// PixelFormatInternal: planar/semiplanar YUV first (cheapest for the
// camera to produce and for convert to turn into RGB), then packed YUV,
// then RGB as a last resort.
var negotiationOrder = []pixelformat.PixelFormat{
	pixelformat.NV12,
	pixelformat.I420,
	pixelformat.YUYV,
	pixelformat.UYVY,
	pixelformat.RGB24,
	pixelformat.BGR24,
}

func fourccFor(pf pixelformat.PixelFormat) (uint32, bool) {
	switch pf {
	case pixelformat.NV12, pixelformat.NV12f:
		return fourccNV12, true
	case pixelformat.I420, pixelformat.I420f:
		return fourccYUV420, true
	case pixelformat.YUYV, pixelformat.YUYVf:
		return fourccYUYV, true
	case pixelformat.UYVY, pixelformat.UYVYf:
		return fourccUYVY, true
	case pixelformat.RGB24:
		return fourccRGB24, true
	case pixelformat.BGR24:
		return fourccBGR24, true
	default:
		return 0, false
	}
}

// pixelFormatFor maps a V4L2 FourCC the driver reported back to our own
// taxonomy. V4L2 never signals full-range YUV, so every YUV result comes
// back video-range.
func pixelFormatFor(cc uint32) (pixelformat.PixelFormat, bool) {
	switch cc {
	case fourccNV12:
		return pixelformat.NV12, true
	case fourccYUV420:
		return pixelformat.I420, true
	case fourccYUYV:
		return pixelformat.YUYV, true
	case fourccUYVY:
		return pixelformat.UYVY, true
	case fourccRGB24:
		return pixelformat.RGB24, true
	case fourccBGR24:
		return pixelformat.BGR24, true
	default:
		return pixelformat.Unknown, false
	}
}
