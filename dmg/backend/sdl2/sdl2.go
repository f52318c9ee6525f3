//go:build sdl2

// Package sdl2 presents frames in an SDL2 window. Building it requires the
// SDL2 development libraries, so it is only compiled with the sdl2 tag.
package sdl2

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/timing"
	"github.com/valerio/go-dmg/dmg/video"
)

// Backend implements backend.Backend using SDL2 bindings.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte
	limiter  timing.Limiter

	config  backend.Config
	running bool
}

func New() *Backend {
	return &Backend{}
}

// Available reports whether this binary was built with SDL2 support.
func Available() bool {
	return true
}

func (s *Backend) Init(config backend.Config) error {
	s.config = config
	scale := int32(config.ScaleOrDefault())

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		video.FramebufferWidth*scale,
		video.FramebufferHeight*scale,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	// ABGR8888 is R, G, B, A in memory on little-endian machines
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	s.pixels = backend.NewPixelBuffer()
	s.limiter = timing.NewAdaptiveLimiter()
	s.running = true

	slog.Info("SDL2 backend initialized", "scale", scale)
	return nil
}

func (s *Backend) Update(frame *video.FrameBuffer) (bool, error) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}
	if !s.running {
		return true, nil
	}

	if err := s.renderFrame(frame); err != nil {
		return false, err
	}

	return false, s.limiter.Wait(context.Background())
}

func (s *Backend) Cleanup() error {
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.running = false
	case *sdl.KeyboardEvent:
		act, ok := keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}
		switch {
		case e.Type == sdl.KEYDOWN && e.Repeat == 0:
			if act == action.EmulatorQuit {
				s.running = false
			}
			s.trigger(act, event.Press)
		case e.Type == sdl.KEYUP && act.IsJoypad():
			s.trigger(act, event.Release)
		}
	}
}

func (s *Backend) trigger(act action.Action, evt event.Type) {
	if s.config.InputManager != nil {
		s.config.InputManager.Trigger(act, evt)
	}
}

var keyNames = map[sdl.Keycode]string{
	sdl.K_z:      "z",
	sdl.K_x:      "x",
	sdl.K_RETURN: "Enter",
	sdl.K_RSHIFT: "Shift",
	sdl.K_LSHIFT: "Shift",
	sdl.K_UP:     "Up",
	sdl.K_DOWN:   "Down",
	sdl.K_LEFT:   "Left",
	sdl.K_RIGHT:  "Right",
	sdl.K_w:      "w",
	sdl.K_a:      "a",
	sdl.K_s:      "s",
	sdl.K_d:      "d",
	sdl.K_p:      "p",
	sdl.K_SPACE:  "Space",
	sdl.K_F9:     "F9",
	sdl.K_ESCAPE: "Escape",
	sdl.K_q:      "q",
}

// keyMapping maps SDL2 keys to actions through the shared default key map.
var keyMapping = func() map[sdl.Keycode]action.Action {
	mapping := make(map[sdl.Keycode]action.Action, len(keyNames))
	for key, name := range keyNames {
		if act, ok := input.DefaultKeyMap[name]; ok {
			mapping[key] = act
		}
	}
	return mapping
}()

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	backend.FillRGBA(s.pixels, frame)

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), video.FramebufferWidth*backend.BytesPerPixel); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy texture: %w", err)
	}
	s.renderer.Present()
	return nil
}
