//go:build !sdl2

package sdl2

import (
	"errors"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/video"
)

// ErrNotAvailable is returned when the binary was built without SDL2.
var ErrNotAvailable = errors.New("SDL2 backend not available: build with -tags sdl2 to enable")

// Backend stub for when SDL2 is not available.
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

// Available reports whether this binary was built with SDL2 support.
func Available() bool {
	return false
}

func (s *Backend) Init(backend.Config) error {
	return ErrNotAvailable
}

func (s *Backend) Update(*video.FrameBuffer) (bool, error) {
	return false, ErrNotAvailable
}

func (s *Backend) Cleanup() error {
	return nil
}
