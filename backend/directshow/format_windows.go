//go:build windows

package directshow

import "github.com/obinnaokechukwu/gocapture/pixelformat"

// negotiationOrder is the priority list this backend walks when asking
// the source reader for a media type: uncompressed YUV first (cheapest
// for the convert package to handle), then packed BGR. MJPG is not a
// candidate; a negotiated MJPG subtype is rejected on read-back.
var negotiationOrder = []pixelformat.PixelFormat{
	pixelformat.NV12,
	pixelformat.YUYV,
	pixelformat.UYVY,
	pixelformat.BGR24,
	pixelformat.BGRA32,
}

func guidFor(pf pixelformat.PixelFormat) (guid, bool) {
	switch pf {
	case pixelformat.NV12:
		return mfVideoFormatNV12, true
	case pixelformat.YUYV:
		return mfVideoFormatYUY2, true
	case pixelformat.UYVY:
		return mfVideoFormatUYVY, true
	case pixelformat.BGR24:
		// MFVideoFormat_RGB24 is byte-order BGR in memory, top row
		// first if MF_MT_DEFAULT_STRIDE is positive, bottom row first
		// if negative; this backend treats it as BottomToTop by
		// default to match the legacy DIB convention most capture
		// drivers still emit it in.
		return mfVideoFormatRGB24, true
	case pixelformat.BGRA32:
		return mfVideoFormatRGB32, true
	}
	return guid{}, false
}

func pixelFormatForGUID(g guid) (pixelformat.PixelFormat, bool) {
	switch {
	case g == mfVideoFormatNV12:
		return pixelformat.NV12, true
	case g == mfVideoFormatYUY2:
		return pixelformat.YUYV, true
	case g == mfVideoFormatUYVY:
		return pixelformat.UYVY, true
	case g == mfVideoFormatRGB24:
		return pixelformat.BGR24, true
	case g == mfVideoFormatRGB32:
		return pixelformat.BGRA32, true
	}
	return 0, false
}

func isMJPEG(g guid) bool { return g == mfVideoFormatMJPG }
