//go:build linux

package gocapture

import (
	"github.com/obinnaokechukwu/gocapture/backend/v4l2"
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/provider"
)

func newPlatformBackend(pool *frame.FramePool, sink provider.Sink) provider.Backend {
	return v4l2.New(pool, sink)
}
