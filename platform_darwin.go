//go:build darwin

package gocapture

import (
	"github.com/obinnaokechukwu/gocapture/backend/apple"
	"github.com/obinnaokechukwu/gocapture/frame"
	"github.com/obinnaokechukwu/gocapture/provider"
)

func newPlatformBackend(pool *frame.FramePool, sink provider.Sink) provider.Backend {
	return apple.New(pool, sink)
}
