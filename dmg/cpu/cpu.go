package cpu

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/bit"
)

// Bus is the address space the CPU fetches from and writes to.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// InterruptMaster owns the master interrupt enable (IME). DI and EI/RETI
// toggle it, the controller decides when an enabled interrupt is recognized.
type InterruptMaster interface {
	EnableInterrupts()
	DisableInterrupts()
}

// serviceCycles is the cost of the call-like transfer to an interrupt vector.
const serviceCycles = 5

// CPU holds the LR35902 register file and execution state.
type CPU struct {
	// registers
	a  uint8
	f  Flags
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	// metadata
	cycles  uint64
	halted  bool
	stalled bool
	opcode  uint8

	bus Bus
	ime InterruptMaster
}

// New returns a CPU with the DMG power-on register values.
func New(bus Bus, ime InterruptMaster) *CPU {
	cpu := &CPU{
		bus: bus,
		ime: ime,
	}

	cpu.setAF(0x01B0)
	cpu.setBC(0x0013)
	cpu.setDE(0x00D8)
	cpu.setHL(0x014D)
	cpu.sp = 0xFFFE
	cpu.pc = 0x0100

	return cpu
}

// Step executes a single instruction and returns the amount of machine
// cycles it took. A halted CPU only burns one cycle. An undefined opcode
// leaves all state untouched and returns 0.
func (c *CPU) Step() int {
	if c.halted {
		c.cycles++
		return 1
	}

	c.opcode = c.bus.Read(c.pc)
	c.pc++

	cycles := opcodes[c.opcode](c)
	c.cycles += uint64(cycles)

	return cycles
}

// Service performs the call-like transfer to an interrupt handler: the
// current PC is pushed and execution resumes at vector.
func (c *CPU) Service(vector uint16) {
	c.halted = false
	c.stalled = false
	c.pushStack(c.pc)
	c.pc = vector
	c.cycles += serviceCycles
}

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// Resume leaves the halted state without servicing anything.
func (c *CPU) Resume() { c.halted = false }

// Stalled reports whether the last fetch hit an undefined opcode.
func (c *CPU) Stalled() bool { return c.stalled }

// undefined is installed for opcodes that do not exist on the LR35902.
func undefined(c *CPU) int {
	c.pc--
	if !c.stalled {
		slog.Error("undefined opcode",
			"opcode", fmt.Sprintf("0x%02X", c.opcode),
			"pc", fmt.Sprintf("0x%04X", c.pc))
	}
	c.stalled = true
	return 0
}

// readImmediate returns the byte at PC ('n' in mnemonics) and advances PC.
func (c *CPU) readImmediate() uint8 {
	n := c.bus.Read(c.pc)
	c.pc++
	return n
}

// readImmediateWord returns the little endian word at PC ('nn' in mnemonics)
// and advances PC by two.
func (c *CPU) readImmediateWord() uint16 {
	low := c.bus.Read(c.pc)
	high := c.bus.Read(c.pc + 1)
	c.pc += 2
	return bit.Combine(high, low)
}

// readSignedImmediate returns the byte at PC as a signed offset and advances PC.
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	c.f = Flags(bit.Low(value)) & flagMask
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, uint8(c.f))
}

// Registers is a snapshot of the register file.
type Registers struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
}

// Registers returns a copy of the current register values.
func (c *CPU) Registers() Registers {
	return Registers{
		A: c.a, F: uint8(c.f), B: c.b, C: c.c, D: c.d, E: c.e, H: c.h, L: c.l,
		SP: c.sp, PC: c.pc,
	}
}

// SetRegisters loads the register file from r. The low nibble of F is dropped.
func (c *CPU) SetRegisters(r Registers) {
	c.a, c.b, c.c, c.d, c.e, c.h, c.l = r.A, r.B, r.C, r.D, r.E, r.H, r.L
	c.f = Flags(r.F) & flagMask
	c.sp, c.pc = r.SP, r.PC
}

func (c *CPU) PC() uint16     { return c.pc }
func (c *CPU) SP() uint16     { return c.sp }
func (c *CPU) Flags() Flags   { return c.f }
func (c *CPU) Cycles() uint64 { return c.cycles }

func (r Registers) String() string {
	return fmt.Sprintf("A:%02X F:%s B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X",
		r.A, Flags(r.F), r.B, r.C, r.D, r.E, r.H, r.L, r.SP, r.PC)
}
