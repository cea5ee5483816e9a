//go:build windows

package gocapture

import (
	"github.com/obinnaokechukwu/gocapture/backend/directshow"
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/provider"
)

func newPlatformBackend(pool *frame.FramePool, sink provider.Sink) provider.Backend {
	return directshow.New(pool, sink)
}
