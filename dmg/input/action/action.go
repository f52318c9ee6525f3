package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// DMG hardware controls
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Emulator features
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorQuit
)

// IsJoypad reports whether the action is one of the eight DMG keys.
func (a Action) IsJoypad() bool {
	return a >= GBButtonA && a <= GBDPadRight
}
