//go:build !ebiten

package ebiten

import (
	"context"
	"errors"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/video"
)

// ErrNotAvailable is returned when the binary was built without ebiten.
var ErrNotAvailable = errors.New("ebiten backend not available: build with -tags ebiten to enable")

// Backend stub for when ebiten is not compiled in.
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

// Available reports whether this binary was built with ebiten support.
func Available() bool {
	return false
}

func (b *Backend) Init(backend.Config) error {
	return ErrNotAvailable
}

func (b *Backend) Update(*video.FrameBuffer) (bool, error) {
	return false, ErrNotAvailable
}

func (b *Backend) Cleanup() error {
	return nil
}

func (b *Backend) MainLoop(context.Context) error {
	return ErrNotAvailable
}
