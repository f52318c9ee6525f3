// Package terminal renders frames into a terminal with tcell, two pixel rows
// per character cell, next to a panel with the most recent log lines.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/timing"
	"github.com/valerio/go-dmg/dmg/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	gameRows  = height / 2
	logPanelX = width + 1

	logCapacity = 200

	// keyTimeout is how long a key counts as held after the terminal last
	// reported it. Terminals only send presses and repeats, never releases.
	keyTimeout = 100 * time.Millisecond
)

// Backend implements backend.Backend on top of a tcell screen.
type Backend struct {
	screen    tcell.Screen
	config    backend.Config
	limiter   timing.Limiter
	logBuffer *LogBuffer
	logLevel  slog.Leveler
	now       func() time.Time

	keyStates  map[action.Action]time.Time // last time each joypad key was seen
	activeKeys map[action.Action]bool      // joypad keys held during the last update
	quit       bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithScreen uses screen instead of the real terminal.
func WithScreen(screen tcell.Screen) Option { return func(t *Backend) { t.screen = screen } }

// WithLimiter paces frames with l instead of an AdaptiveLimiter.
func WithLimiter(l timing.Limiter) Option { return func(t *Backend) { t.limiter = l } }

// WithLogLevel sets the minimum level shown in the log panel.
func WithLogLevel(level slog.Leveler) Option { return func(t *Backend) { t.logLevel = level } }

func New(opts ...Option) *Backend {
	t := &Backend{
		logLevel:   slog.LevelInfo,
		logBuffer:  NewLogBuffer(logCapacity),
		now:        time.Now,
		keyStates:  make(map[action.Action]time.Time),
		activeKeys: make(map[action.Action]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Backend) Init(config backend.Config) error {
	t.config = config

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if t.limiter == nil {
		t.limiter = timing.NewAdaptiveLimiter()
	}

	// anything written to stderr from now on would corrupt the screen
	slog.SetDefault(slog.New(NewLogHandler(t.logBuffer, t.logLevel)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	slog.Info("Terminal backend initialized", "title", config.Title)
	return nil
}

// Update processes pending key events, draws the frame and waits for the
// next frame to be due.
func (t *Backend) Update(frame *video.FrameBuffer) (bool, error) {
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
	t.updateHeldKeys()

	if t.quit {
		return true, nil
	}

	t.render(frame)
	t.screen.Show()

	if err := t.limiter.Wait(context.Background()); err != nil {
		return false, err
	}
	return false, nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	// logs go back to stderr after the screen is gone
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: t.logLevel})))
	return nil
}

// Logs returns the log buffer shown in the side panel.
func (t *Backend) Logs() *LogBuffer {
	return t.logBuffer
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey) {
	act, ok := t.actionFor(ev)
	if !ok {
		return
	}

	if act == action.EmulatorQuit {
		t.quit = true
	}

	if !act.IsJoypad() {
		t.trigger(act, event.Press)
		return
	}

	if isDirection(act) {
		// terminals report one key at a time, so a new direction replaces
		// the previous one
		for _, dir := range []action.Action{action.GBDPadUp, action.GBDPadDown, action.GBDPadLeft, action.GBDPadRight} {
			if dir != act {
				delete(t.keyStates, dir)
			}
		}
	}
	t.keyStates[act] = t.now()
}

func (t *Backend) actionFor(ev *tcell.EventKey) (action.Action, bool) {
	if ev.Key() == tcell.KeyCtrlC {
		return action.EmulatorQuit, true
	}

	var name string
	if ev.Key() == tcell.KeyRune {
		name = runeNames[ev.Rune()]
		if name == "" {
			name = string(ev.Rune())
		}
	} else {
		name = keyNames[ev.Key()]
	}

	act, ok := input.DefaultKeyMap[name]
	return act, ok
}

// updateHeldKeys turns the key timestamps into press, hold and release
// events for the joypad.
func (t *Backend) updateHeldKeys() {
	now := t.now()
	active := make(map[action.Action]bool, len(t.keyStates))

	for act, seen := range t.keyStates {
		if now.Sub(seen) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		active[act] = true
		if t.activeKeys[act] {
			t.trigger(act, event.Hold)
		} else {
			t.trigger(act, event.Press)
		}
	}

	for act := range t.activeKeys {
		if !active[act] {
			t.trigger(act, event.Release)
		}
	}
	t.activeKeys = active
}

func (t *Backend) trigger(act action.Action, evt event.Type) {
	if t.config.InputManager != nil {
		t.config.InputManager.Trigger(act, evt)
	}
}

func isDirection(act action.Action) bool {
	switch act {
	case action.GBDPadUp, action.GBDPadDown, action.GBDPadLeft, action.GBDPadRight:
		return true
	}
	return false
}

var keyNames = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyF9:     "F9",
}

var runeNames = map[rune]string{
	' ': "Space",
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < width || termHeight < gameRows {
		t.drawText(0, 0, termWidth, fmt.Sprintf("Terminal too small! Need at least %dx%d", width, gameRows),
			tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	t.drawFrame(frame)

	switch {
	case termWidth > logPanelX:
		t.drawLogs(logPanelX, 0, termWidth-logPanelX, termHeight)
	case termHeight > gameRows:
		t.drawLogs(0, gameRows, termWidth, termHeight-gameRows)
	}
}

func (t *Backend) drawFrame(frame *video.FrameBuffer) {
	pixels := frame.ToSlice()
	for row := 0; row < gameRows; row++ {
		top := pixels[row*2*width:]
		bottom := pixels[(row*2+1)*width:]
		for x := 0; x < width; x++ {
			ch, style := halfBlockCell(top[x], bottom[x])
			t.screen.SetContent(x, row, ch, nil, style)
		}
	}
}

func (t *Backend) drawLogs(x, y, w, h int) {
	styles := map[slog.Level]tcell.Style{
		slog.LevelDebug: tcell.StyleDefault.Foreground(tcell.ColorGray),
		slog.LevelInfo:  tcell.StyleDefault.Foreground(tcell.ColorBlue),
		slog.LevelWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		slog.LevelError: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	}

	for i, entry := range t.logBuffer.Recent(h) {
		style, ok := styles[entry.Level]
		if !ok {
			style = tcell.StyleDefault
		}
		t.drawText(x, y+i, w, entry.String(), style)
	}
}

// drawText writes text at (x, y), truncating it to w cells.
func (t *Backend) drawText(x, y, w int, text string, style tcell.Style) {
	runes := []rune(text)
	if len(runes) > w {
		if w > 3 {
			runes = append(runes[:w-3], '.', '.', '.')
		} else {
			runes = runes[:w]
		}
	}
	for i, ch := range runes {
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}
