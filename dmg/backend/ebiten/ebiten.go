//go:build ebiten

// Package ebiten presents frames in a window driven by ebiten. Ebiten owns
// the main goroutine, so this backend also implements backend.MainLoop.
package ebiten

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/timing"
	"github.com/valerio/go-dmg/dmg/video"
)

// Backend implements backend.Backend on top of an ebiten game loop.
type Backend struct {
	config  backend.Config
	limiter timing.Limiter

	mu     sync.Mutex
	pixels []byte

	held   map[ebiten.Key]bool
	closed atomic.Bool
}

func New() *Backend {
	return &Backend{
		pixels: backend.NewPixelBuffer(),
		held:   make(map[ebiten.Key]bool),
	}
}

// Available reports whether this binary was built with ebiten support.
func Available() bool {
	return true
}

func (b *Backend) Init(config backend.Config) error {
	b.config = config
	b.limiter = timing.NewAdaptiveLimiter()

	scale := config.ScaleOrDefault()
	ebiten.SetWindowTitle(config.Title)
	ebiten.SetWindowSize(video.FramebufferWidth*scale, video.FramebufferHeight*scale)
	ebiten.SetTPS(int(timing.TargetFPS() + 0.5))

	slog.Info("ebiten backend initialized", "scale", scale)
	return nil
}

// Update hands the frame over to the game loop and paces the caller.
func (b *Backend) Update(frame *video.FrameBuffer) (bool, error) {
	if b.closed.Load() {
		return true, nil
	}

	b.mu.Lock()
	backend.FillRGBA(b.pixels, frame)
	b.mu.Unlock()

	return false, b.limiter.Wait(context.Background())
}

func (b *Backend) Cleanup() error {
	b.closed.Store(true)
	return nil
}

// MainLoop runs the ebiten game loop until the window is closed or ctx is
// cancelled. It must be called from the main goroutine.
func (b *Backend) MainLoop(ctx context.Context) error {
	err := ebiten.RunGame(&game{backend: b, ctx: ctx})
	b.closed.Store(true)
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("ebiten: %w", err)
	}
	return nil
}

type game struct {
	backend *Backend
	ctx     context.Context
}

func (g *game) Update() error {
	if g.ctx.Err() != nil || g.backend.closed.Load() {
		return ebiten.Termination
	}
	g.backend.pollKeys()
	if g.backend.closed.Load() {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.backend.mu.Lock()
	defer g.backend.mu.Unlock()
	screen.WritePixels(g.backend.pixels)
}

func (g *game) Layout(int, int) (int, int) {
	return video.FramebufferWidth, video.FramebufferHeight
}

// pollKeys turns key state changes into press and release events.
func (b *Backend) pollKeys() {
	for key, act := range keyMapping {
		pressed := ebiten.IsKeyPressed(key)
		if pressed == b.held[key] {
			continue
		}
		b.held[key] = pressed

		switch {
		case pressed:
			if act == action.EmulatorQuit {
				b.closed.Store(true)
			}
			b.trigger(act, event.Press)
		case act.IsJoypad():
			b.trigger(act, event.Release)
		}
	}
}

func (b *Backend) trigger(act action.Action, evt event.Type) {
	if b.config.InputManager != nil {
		b.config.InputManager.Trigger(act, evt)
	}
}

var keyNames = map[ebiten.Key]string{
	ebiten.KeyZ:          "z",
	ebiten.KeyX:          "x",
	ebiten.KeyEnter:      "Enter",
	ebiten.KeyShiftLeft:  "Shift",
	ebiten.KeyShiftRight: "Shift",
	ebiten.KeyArrowUp:    "Up",
	ebiten.KeyArrowDown:  "Down",
	ebiten.KeyArrowLeft:  "Left",
	ebiten.KeyArrowRight: "Right",
	ebiten.KeyW:          "w",
	ebiten.KeyA:          "a",
	ebiten.KeyS:          "s",
	ebiten.KeyD:          "d",
	ebiten.KeyP:          "p",
	ebiten.KeySpace:      "Space",
	ebiten.KeyF9:         "F9",
	ebiten.KeyEscape:     "Escape",
	ebiten.KeyQ:          "q",
}

var keyMapping = func() map[ebiten.Key]action.Action {
	mapping := make(map[ebiten.Key]action.Action, len(keyNames))
	for key, name := range keyNames {
		if act, ok := input.DefaultKeyMap[name]; ok {
			mapping[key] = act
		}
	}
	return mapping
}()
