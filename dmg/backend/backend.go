// Package backend defines how frames leave the core and input comes back in.
// Each implementation lives in its own subpackage; the SDL2 and ebiten ones
// are only compiled with their build tags.
package backend

import (
	"context"

	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/video"
)

// Backend represents a presentation platform (rendering + input).
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, window, PNG files)
// - Translating platform input events to actions via the input Manager
// - Pacing frames to real time when a person is watching
type Backend interface {
	// Init configures the backend. It must be called before Update.
	Init(config Config) error

	// Update presents a completed frame and processes pending platform
	// events. closeRequested is true once the backend wants to stop.
	Update(frame *video.FrameBuffer) (closeRequested bool, err error)

	// Cleanup releases the resources acquired by Init.
	Cleanup() error
}

// MainLoop is implemented by backends whose toolkit must own the main
// goroutine. The caller runs the machine on another goroutine and hands the
// main one to MainLoop, which returns when the window is closed or ctx is
// cancelled.
type MainLoop interface {
	MainLoop(ctx context.Context) error
}

// Config holds configuration for backends. Backends ignore what they don't
// support.
type Config struct {
	Title        string
	Scale        int
	InputManager *input.Manager
}

// DefaultScale is the window scale used when Config.Scale is not set.
const DefaultScale = 3

// ScaleOrDefault returns the configured scale, or DefaultScale.
func (c Config) ScaleOrDefault() int {
	if c.Scale <= 0 {
		return DefaultScale
	}
	return c.Scale
}
