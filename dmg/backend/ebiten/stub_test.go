//go:build !ebiten

package ebiten

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/video"
)

func TestStubReportsUnavailable(t *testing.T) {
	b := New()
	var _ backend.Backend = b
	var _ backend.MainLoop = b

	assert.False(t, Available())
	assert.ErrorIs(t, b.Init(backend.Config{}), ErrNotAvailable)

	_, err := b.Update(video.NewFrameBuffer())
	assert.ErrorIs(t, err, ErrNotAvailable)
	assert.ErrorIs(t, b.MainLoop(context.Background()), ErrNotAvailable)
	assert.NoError(t, b.Cleanup())
}
