// Package dump implements gocapture's debug dump utilities: writing a
// VideoFrame to a BMP image or to a raw concatenated-plane file for
// offline inspection. It is a standalone subpackage, the way the spec's
// "external collaborators" are kept outside the core pipeline, since
// none of gocapture's own code needs image encoding to function.
//
// Grounded on the teacher's image.go SaveFrame: pick the target format
// from the output file's extension, convert if the frame isn't already
// in that format, then write bytes. gocapture has no FFmpeg image
// encoder to call, so the BMP path is hand-rolled here instead of
// delegated to one.
package dump

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/obinnaokechukwu/gocapture/frame"
)

// SaveFrame writes f to filename, choosing the dump format from the
// file extension: ".bmp" encodes a 24-bit BMP (converting through BGR24
// if f isn't already BGR24), anything else (".yuv", ".raw", or
// no extension) writes f's planes concatenated in memory order with no
// header at all.
func SaveFrame(f *frame.VideoFrame, filename string) error {
	if f == nil {
		return errors.New("gocapturedump: frame is nil")
	}
	if f.Width == 0 || f.Height == 0 {
		return errors.New("gocapturedump: frame has invalid dimensions")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bmp":
		return saveBMP(f, filename)
	default:
		return saveRaw(f, filename)
	}
}

// saveRaw concatenates every present plane in order and writes the
// result verbatim, with no header: the simplest possible format for
// feeding a frame into a separate tool that already knows its
// dimensions and pixel format out of band.
func saveRaw(f *frame.VideoFrame, filename string) error {
	var out []byte
	for p := 0; p < 3; p++ {
		if f.Stride[p] == 0 {
			continue
		}
		out = append(out, f.Data[p]...)
	}
	return os.WriteFile(filename, out, 0644)
}
