package cpu

// Flags is the flag register (low part of AF). Only the high nibble is used,
// the low nibble always reads back as zero.
type Flags uint8

const (
	zeroFlag      Flags = 0x80
	subFlag       Flags = 0x40
	halfCarryFlag Flags = 0x20
	carryFlag     Flags = 0x10

	flagMask Flags = 0xF0
)

func (f Flags) Zero() bool      { return f&zeroFlag != 0 }
func (f Flags) Sub() bool       { return f&subFlag != 0 }
func (f Flags) HalfCarry() bool { return f&halfCarryFlag != 0 }
func (f Flags) Carry() bool     { return f&carryFlag != 0 }

func (f *Flags) SetZero(v bool)      { f.setTo(zeroFlag, v) }
func (f *Flags) SetSub(v bool)       { f.setTo(subFlag, v) }
func (f *Flags) SetHalfCarry(v bool) { f.setTo(halfCarryFlag, v) }
func (f *Flags) SetCarry(v bool)     { f.setTo(carryFlag, v) }

func (f *Flags) setTo(flag Flags, v bool) {
	if v {
		*f |= flag
		return
	}
	*f &^= flag
}

// carryBit returns 1 if the carry flag is set, 0 otherwise.
func (f Flags) carryBit() uint8 {
	if f.Carry() {
		return 1
	}
	return 0
}

// String returns the flags in the usual ZNHC notation, with '-' for unset flags.
func (f Flags) String() string {
	out := []byte("----")
	if f.Zero() {
		out[0] = 'Z'
	}
	if f.Sub() {
		out[1] = 'N'
	}
	if f.HalfCarry() {
		out[2] = 'H'
	}
	if f.Carry() {
		out[3] = 'C'
	}
	return string(out)
}
