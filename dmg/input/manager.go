package input

import (
	"time"

	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
)

const (
	// debounceDuration is the minimum time between two emulator actions of the same kind.
	debounceDuration = 300 * time.Millisecond
)

// Manager routes input actions: DMG keys go to the joypad, everything else
// to the registered callbacks.
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time
	joypad        *Joypad
	now           func() time.Time
}

func NewManager(j *Joypad) *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		joypad:        j,
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	if act.IsJoypad() {
		if m.joypad == nil {
			return
		}
		key := joypadKeys[act]
		switch evt {
		case event.Press, event.Hold:
			m.joypad.Press(key)
		case event.Release:
			m.joypad.Release(key)
		}
		return
	}

	if evt == event.Press && m.debounced(act, evt) {
		return
	}

	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}

func (m *Manager) debounced(act action.Action, evt event.Type) bool {
	now := m.now()
	if m.lastTriggered[act] == nil {
		m.lastTriggered[act] = make(map[event.Type]time.Time)
	}
	if now.Sub(m.lastTriggered[act][evt]) < debounceDuration {
		return true
	}
	m.lastTriggered[act][evt] = now
	return false
}

// Joypad returns the joypad the manager drives.
func (m *Manager) Joypad() *Joypad {
	return m.joypad
}

var joypadKeys = map[action.Action]Key{
	action.GBButtonA:      KeyA,
	action.GBButtonB:      KeyB,
	action.GBButtonStart:  KeyStart,
	action.GBButtonSelect: KeySelect,
	action.GBDPadUp:       KeyUp,
	action.GBDPadDown:     KeyDown,
	action.GBDPadLeft:     KeyLeft,
	action.GBDPadRight:    KeyRight,
}
