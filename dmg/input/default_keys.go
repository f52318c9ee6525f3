package input

import "github.com/valerio/go-dmg/dmg/input/action"

// DefaultKeyMap provides default key mappings that work across backends.
// Backends translate their native key names to these and can extend them.
var DefaultKeyMap = map[string]action.Action{
	"z":     action.GBButtonA,
	"x":     action.GBButtonB,
	"Enter": action.GBButtonStart,
	"Shift": action.GBButtonSelect,
	"Up":    action.GBDPadUp,
	"Down":  action.GBDPadDown,
	"Left":  action.GBDPadLeft,
	"Right": action.GBDPadRight,

	// WASD
	"w": action.GBDPadUp,
	"s": action.GBDPadDown,
	"a": action.GBDPadLeft,
	"d": action.GBDPadRight,

	"p":      action.EmulatorPauseToggle,
	"Space":  action.EmulatorPauseToggle,
	"F9":     action.EmulatorSnapshot,
	"Escape": action.EmulatorQuit,
	"q":      action.EmulatorQuit,
}
