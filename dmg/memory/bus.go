// Package memory implements the 64K address space: the fixed memory regions
// and the decoding of I/O registers to the components that own them.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// Registers is a block of memory mapped registers owned by another component.
type Registers interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// InterruptRegisters exposes IF and IE.
type InterruptRegisters interface {
	ReadIF() uint8
	WriteIF(value uint8)
	ReadIE() uint8
	WriteIE(value uint8)
}

// Input reports the pressed keys as two active-high 4 bit masks.
// Buttons: A, B, Select, Start (bits 0-3). Directions: Right, Left, Up, Down.
type Input interface {
	Buttons() uint8
	Directions() uint8
}

// Devices are the components the bus forwards register accesses to.
// Any of them can be nil, the registers then behave as plain memory.
type Devices struct {
	Timer      Registers
	Video      Registers
	Serial     Registers
	Interrupts InterruptRegisters
	Input      Input
}

// Bus allows access to all memory mapped I/O and data/registers.
type Bus struct {
	rom    [0x8000]uint8
	vram   [0x2000]uint8
	extRAM [0x2000]uint8
	wram   [0x2000]uint8
	oam    [addr.OAMSize]uint8
	io     [0x80]uint8
	hram   [0x7F]uint8

	devices Devices
}

// New creates a bus with no cartridge and the I/O block in its power-on state.
func New() *Bus {
	b := &Bus{}
	b.io[addr.P1-addr.IOStart] = 0x30
	for address, value := range powerOnIO {
		b.io[address-addr.IOStart] = value
	}
	return b
}

// powerOnIO are the documented post-boot values of the registers that live
// in the generic I/O block.
var powerOnIO = map[uint16]uint8{
	addr.NR10: 0x80,
	addr.NR11: 0xBF,
	addr.NR12: 0xF3,
	addr.NR14: 0xBF,
	addr.NR21: 0x3F,
	addr.NR24: 0xBF,
	addr.NR30: 0x7F,
	addr.NR31: 0xFF,
	addr.NR32: 0x9F,
	addr.NR33: 0xBF,
	addr.NR41: 0xFF,
	addr.NR44: 0xBF,
	addr.NR50: 0x77,
	addr.NR51: 0xF3,
	addr.NR52: 0xF1,
}

// Connect wires the register owning components into the bus.
func (b *Bus) Connect(d Devices) {
	b.devices = d
}

// LoadROM copies the fixed 32K ROM window from data. Shorter images are
// zero padded, longer ones truncated.
func (b *Bus) LoadROM(data []uint8) {
	n := copy(b.rom[:], data)
	clear(b.rom[n:])
	if len(data) > len(b.rom) {
		slog.Warn("ROM larger than the fixed window, extra banks are not mapped",
			"size", len(data), "mapped", len(b.rom))
	}
}

func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address <= addr.ROMEnd:
		return b.rom[address]
	case address < addr.ExtRAMStart:
		return b.vram[address-addr.VRAMStart]
	case address < addr.WRAMStart:
		return b.extRAM[address-addr.ExtRAMStart]
	case address < addr.EchoStart:
		return b.wram[address-addr.WRAMStart]
	case address <= addr.EchoEnd:
		return b.wram[address-addr.EchoStart]
	case address <= addr.OAMEnd:
		return b.oam[address-addr.OAMStart]
	case address < addr.IOStart:
		// unusable area
		return 0
	case address < addr.HRAMStart:
		return b.readIO(address)
	case address <= addr.HRAMEnd:
		return b.hram[address-addr.HRAMStart]
	default:
		if b.devices.Interrupts != nil {
			return b.devices.Interrupts.ReadIE()
		}
		return 0
	}
}

func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address <= addr.ROMEnd:
		slog.Debug("ignored write to ROM",
			"addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	case address < addr.ExtRAMStart:
		b.vram[address-addr.VRAMStart] = value
	case address < addr.WRAMStart:
		b.extRAM[address-addr.ExtRAMStart] = value
	case address < addr.EchoStart:
		b.wram[address-addr.WRAMStart] = value
	case address <= addr.EchoEnd:
		// the mirror is read-only
	case address <= addr.OAMEnd:
		b.oam[address-addr.OAMStart] = value
	case address < addr.IOStart:
		// unusable area, writes are dropped
	case address < addr.HRAMStart:
		b.writeIO(address, value)
	case address <= addr.HRAMEnd:
		b.hram[address-addr.HRAMStart] = value
	default:
		if b.devices.Interrupts != nil {
			b.devices.Interrupts.WriteIE(value)
		}
	}
}

// device returns the component owning an I/O register, if any.
func (b *Bus) device(address uint16) Registers {
	switch {
	case address == addr.SB || address == addr.SC:
		return b.devices.Serial
	case address >= addr.DIV && address <= addr.TAC:
		return b.devices.Timer
	case address >= addr.LCDC && address <= addr.WX && address != addr.DMA:
		return b.devices.Video
	}
	return nil
}

func (b *Bus) readIO(address uint16) uint8 {
	switch address {
	case addr.P1:
		return b.readJoypad()
	case addr.IF:
		if b.devices.Interrupts != nil {
			return b.devices.Interrupts.ReadIF()
		}
	}

	if d := b.device(address); d != nil {
		return d.Read(address)
	}
	return b.io[address-addr.IOStart]
}

func (b *Bus) writeIO(address uint16, value uint8) {
	switch address {
	case addr.P1:
		// only the select bits are writable
		b.io[0] = value & 0x30
		return
	case addr.IF:
		if b.devices.Interrupts != nil {
			b.devices.Interrupts.WriteIF(value)
			return
		}
	case addr.DMA:
		b.dma(value)
	}

	if d := b.device(address); d != nil {
		d.Write(address, value)
		return
	}
	b.io[address-addr.IOStart] = value
}

// dma copies 160 bytes from value*0x100 into OAM. The copy is immediate.
func (b *Bus) dma(value uint8) {
	source := uint16(value) << 8
	for i := uint16(0); i < addr.OAMSize; i++ {
		b.oam[i] = b.Read(source + i)
	}
}

// readJoypad builds P1 from the select bits last written and the input state.
//
// A group is selected when its bit is 0: bit 4 selects the d-pad, bit 5 the
// buttons. In the low nibble 0 means pressed. Bits 6-7 always read as 1.
func (b *Bus) readJoypad() uint8 {
	selected := b.io[0] & 0x30
	result := uint8(0xC0) | selected

	var pressed uint8
	if b.devices.Input != nil {
		if !bit.IsSet(4, selected) {
			pressed |= b.devices.Input.Directions()
		}
		if !bit.IsSet(5, selected) {
			pressed |= b.devices.Input.Buttons()
		}
	}

	return result | (0x0F ^ (pressed & 0x0F))
}
