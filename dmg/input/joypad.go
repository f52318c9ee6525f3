package input

import (
	"sync"

	"github.com/valerio/go-dmg/dmg/bit"
)

// Key is one of the eight DMG keys.
type Key uint8

const (
	KeyRight Key = iota
	KeyLeft
	KeyUp
	KeyDown
	KeyA
	KeyB
	KeySelect
	KeyStart
)

// Joypad holds the pressed keys. Backends update it from their own
// goroutine while the core reads it, so all access is locked.
//
// Masks are active-high: a set bit means the key is pressed.
type Joypad struct {
	mu         sync.Mutex
	buttons    uint8
	directions uint8
	pressed    bool // a key went down since the last TakePressed
}

// NewJoypad creates a joypad with nothing pressed.
func NewJoypad() *Joypad {
	return &Joypad{}
}

// Press marks key as held down.
func (j *Joypad) Press(key Key) {
	j.mu.Lock()
	defer j.mu.Unlock()

	mask, index := j.group(key)
	if !bit.IsSet(index, *mask) {
		j.pressed = true
	}
	*mask = bit.Set(index, *mask)
}

// Release marks key as released.
func (j *Joypad) Release(key Key) {
	j.mu.Lock()
	defer j.mu.Unlock()

	mask, index := j.group(key)
	*mask = bit.Reset(index, *mask)
}

// group returns the mask a key lives in and its bit index. Must hold mu.
func (j *Joypad) group(key Key) (*uint8, uint8) {
	if key >= KeyA {
		return &j.buttons, uint8(key - KeyA)
	}
	return &j.directions, uint8(key)
}

// Buttons returns A, B, Select, Start as bits 0-3.
func (j *Joypad) Buttons() uint8 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.buttons
}

// Directions returns Right, Left, Up, Down as bits 0-3.
func (j *Joypad) Directions() uint8 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.directions
}

// TakePressed reports whether any key was pressed since the last call.
// The core uses it to raise the joypad interrupt.
func (j *Joypad) TakePressed() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	pressed := j.pressed
	j.pressed = false
	return pressed
}
