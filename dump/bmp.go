package dump

import (
	"encoding/binary"
	"errors"
	"os"

	"github.com/obinnaokechukwu/gocapture/convert"
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/pixelformat"
)

const (
	bmpFileHeaderSize = 14
	bmpInfoHeaderSize = 40
	bmpHeaderSize     = bmpFileHeaderSize + bmpInfoHeaderSize
)

// saveBMP converts a working copy of f to bottom-up BGR24 (BMP's native
// row order and channel order) and writes an uncompressed 24-bit BMP.
// f itself is never mutated: InplaceConvertFrame runs against a
// value-copy of the VideoFrame header with its Allocator cleared, so
// every conversion or flip writes into a freshly allocated buffer
// instead of f's own.
func saveBMP(f *frame.VideoFrame, filename string) error {
	work := *f
	work.Allocator = nil
	flip := work.Orientation == frame.TopToBottom
	if !convert.InplaceConvertFrame(&work, pixelformat.BGR24, flip) {
		return errors.New("gocapturedump: frame's pixel format cannot be converted to BGR24")
	}

	width, height := work.Width, work.Height
	srcStride := work.Stride[0]
	rowBytes := width * 3
	dstStride := (rowBytes + 3) &^ 3 // rows are padded to a 4-byte boundary
	pixelData := make([]byte, dstStride*height)
	for y := 0; y < height; y++ {
		copy(pixelData[y*dstStride:y*dstStride+rowBytes], work.Data[0][y*srcStride:y*srcStride+rowBytes])
	}

	fileSize := bmpHeaderSize + len(pixelData)
	buf := make([]byte, fileSize)

	buf[0], buf[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(buf[2:], uint32(fileSize))
	binary.LittleEndian.PutUint32(buf[10:], uint32(bmpHeaderSize))

	binary.LittleEndian.PutUint32(buf[14:], bmpInfoHeaderSize)
	binary.LittleEndian.PutUint32(buf[18:], uint32(width))
	binary.LittleEndian.PutUint32(buf[22:], uint32(height)) // positive => bottom-up
	binary.LittleEndian.PutUint16(buf[26:], 1)               // planes
	binary.LittleEndian.PutUint16(buf[28:], 24)               // bits per pixel
	binary.LittleEndian.PutUint32(buf[34:], uint32(len(pixelData)))

	copy(buf[bmpHeaderSize:], pixelData)

	return os.WriteFile(filename, buf, 0644)
}
