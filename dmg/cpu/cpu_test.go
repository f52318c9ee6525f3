package cpu

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatBus is a plain 64K address space.
type flatBus struct {
	mem [0x10000]uint8
}

func (b *flatBus) Read(address uint16) uint8         { return b.mem[address] }
func (b *flatBus) Write(address uint16, value uint8) { b.mem[address] = value }

// fakeIME records master enable changes.
type fakeIME struct {
	enabled  bool
	enables  int
	disables int
}

func (f *fakeIME) EnableInterrupts() {
	f.enabled = true
	f.enables++
}

func (f *fakeIME) DisableInterrupts() {
	f.enabled = false
	f.disables++
}

func newTestCPU(program ...uint8) (*CPU, *flatBus, *fakeIME) {
	bus := &flatBus{}
	ime := &fakeIME{}
	copy(bus.mem[0x0100:], program)
	return New(bus, ime), bus, ime
}

func TestCPU_powerOnState(t *testing.T) {
	cpu, _, _ := newTestCPU()

	r := cpu.Registers()
	assert.Equal(t, uint16(0x01B0), cpu.getAF())
	assert.Equal(t, uint16(0x0013), cpu.getBC())
	assert.Equal(t, uint16(0x00D8), cpu.getDE())
	assert.Equal(t, uint16(0x014D), cpu.getHL())
	assert.Equal(t, uint16(0xFFFE), r.SP)
	assert.Equal(t, uint16(0x0100), r.PC)
	assert.Equal(t, uint64(0), cpu.Cycles())
	assert.False(t, cpu.Halted())
}

func TestCPU_loadThenIncrement(t *testing.T) {
	cpu, _, _ := newTestCPU(0x3E, 0x05, 0x3C)
	start := cpu.Cycles()

	assert.Equal(t, 2, cpu.Step())
	assert.Equal(t, 1, cpu.Step())

	assert.Equal(t, uint8(6), cpu.a)
	assert.False(t, cpu.f.Zero())
	assert.False(t, cpu.f.HalfCarry())
	assert.False(t, cpu.f.Sub())
	assert.Equal(t, uint64(3), cpu.Cycles()-start)
	assert.Equal(t, uint16(0x0103), cpu.PC())
}

func TestCPU_stack(t *testing.T) {
	cpu, _, _ := newTestCPU()

	cpu.sp = 0xFFFE
	cpu.pushStack(0x0102)

	assert.Equal(t, uint16(0xFFFC), cpu.sp)

	popped := cpu.popStack()

	assert.Equal(t, uint16(0x0102), popped)
	assert.Equal(t, uint16(0xFFFE), cpu.sp)
}

func TestCPU_pushPopRoundTrip(t *testing.T) {
	testCases := []struct {
		desc string
		push uint8
		pop  uint8
		set  func(c *CPU, v uint16)
		get  func(c *CPU) uint16
		want uint16
	}{
		{desc: "BC", push: 0xC5, pop: 0xC1, set: (*CPU).setBC, get: (*CPU).getBC, want: 0xBEEF},
		{desc: "DE", push: 0xD5, pop: 0xD1, set: (*CPU).setDE, get: (*CPU).getDE, want: 0xBEEF},
		{desc: "HL", push: 0xE5, pop: 0xE1, set: (*CPU).setHL, get: (*CPU).getHL, want: 0xBEEF},
		{desc: "AF masks the low nibble of F", push: 0xF5, pop: 0xF1, set: (*CPU).setAF, get: (*CPU).getAF, want: 0xBEE0},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu, _, _ := newTestCPU(tC.push, tC.pop)
			tC.set(cpu, 0xBEEF)

			assert.Equal(t, 4, cpu.Step())
			tC.set(cpu, 0)
			assert.Equal(t, 3, cpu.Step())

			assert.Equal(t, tC.want, tC.get(cpu))
			assert.Equal(t, uint16(0xFFFE), cpu.sp)
		})
	}
}

func TestCPU_popAFDropsLowNibble(t *testing.T) {
	cpu, bus, _ := newTestCPU(0xF1)
	cpu.sp = 0xC000
	bus.mem[0xC000] = 0xFF
	bus.mem[0xC001] = 0x12

	cpu.Step()

	assert.Equal(t, uint8(0x12), cpu.a)
	assert.Equal(t, Flags(0xF0), cpu.f)
}

func TestCPU_halt(t *testing.T) {
	cpu, _, _ := newTestCPU(0x76, 0x00)

	assert.Equal(t, 1, cpu.Step())
	require.True(t, cpu.Halted())

	pc := cpu.PC()
	for i := 0; i < 10; i++ {
		assert.Equal(t, 1, cpu.Step())
	}
	assert.Equal(t, pc, cpu.PC())
	assert.Equal(t, uint64(11), cpu.Cycles())

	cpu.Resume()
	assert.False(t, cpu.Halted())
	cpu.Step()
	assert.Equal(t, pc+1, cpu.PC())
}

func TestCPU_stop(t *testing.T) {
	cpu, _, _ := newTestCPU(0x10, 0x00)

	cpu.Step()

	assert.True(t, cpu.Halted())
	assert.Equal(t, uint16(0x0102), cpu.PC())
}

func TestCPU_service(t *testing.T) {
	cpu, bus, _ := newTestCPU(0x76)
	cpu.Step()
	require.True(t, cpu.Halted())

	before := cpu.Cycles()
	cpu.Service(0x50)

	assert.False(t, cpu.Halted())
	assert.Equal(t, uint16(0x0050), cpu.PC())
	assert.Equal(t, uint16(0xFFFC), cpu.SP())
	assert.Equal(t, uint8(0x01), bus.mem[0xFFFD])
	assert.Equal(t, uint8(0x01), bus.mem[0xFFFC])
	assert.Equal(t, uint64(serviceCycles), cpu.Cycles()-before)
}

func TestCPU_interruptMaster(t *testing.T) {
	cpu, _, ime := newTestCPU(0xF3, 0xFB)

	cpu.Step()
	assert.Equal(t, 1, ime.disables)
	assert.False(t, ime.enabled)

	cpu.Step()
	assert.Equal(t, 1, ime.enables)
	assert.True(t, ime.enabled)
}

func TestCPU_retiEnablesInterrupts(t *testing.T) {
	cpu, bus, ime := newTestCPU(0xD9)
	cpu.sp = 0xC000
	bus.mem[0xC000] = 0x34
	bus.mem[0xC001] = 0x12

	assert.Equal(t, 4, cpu.Step())

	assert.Equal(t, uint16(0x1234), cpu.PC())
	assert.Equal(t, 1, ime.enables)
}

func TestCPU_retLeavesInterruptsAlone(t *testing.T) {
	cpu, bus, ime := newTestCPU(0xC9)
	cpu.sp = 0xC000
	bus.mem[0xC000] = 0x34
	bus.mem[0xC001] = 0x12

	assert.Equal(t, 4, cpu.Step())

	assert.Equal(t, uint16(0x1234), cpu.PC())
	assert.Equal(t, 0, ime.enables)
}

func TestCPU_undefinedOpcodeStalls(t *testing.T) {
	for _, code := range []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		cpu, _, _ := newTestCPU(code)
		before := cpu.Registers()

		assert.Equal(t, 0, cpu.Step(), "opcode 0x%02X", code)
		assert.Equal(t, 0, cpu.Step(), "opcode 0x%02X", code)

		assert.True(t, cpu.Stalled(), "opcode 0x%02X", code)
		assert.Equal(t, before, cpu.Registers(), "opcode 0x%02X", code)
		assert.Equal(t, uint64(0), cpu.Cycles(), "opcode 0x%02X", code)
	}
}

func TestCPU_undefinedOpcodeLoggedOncePerStall(t *testing.T) {
	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	cpu, _, _ := newTestCPU(0xDD)
	for i := 0; i < 5; i++ {
		cpu.Step()
	}
	assert.Equal(t, 1, strings.Count(logs.String(), "undefined opcode"))
	assert.Contains(t, logs.String(), "opcode=0xDD")

	cpu.Service(0x0100)
	cpu.Step()
	assert.Equal(t, 2, strings.Count(logs.String(), "undefined opcode"), "a new stall is reported again")
}

func TestCPU_serviceClearsStall(t *testing.T) {
	cpu, _, _ := newTestCPU(0xD3)
	cpu.Step()
	require.True(t, cpu.Stalled())

	cpu.Service(0x40)

	assert.False(t, cpu.Stalled())
	assert.Equal(t, uint16(0x40), cpu.PC())
}

func TestCPU_tablesAreComplete(t *testing.T) {
	for i := range opcodes {
		assert.NotNil(t, opcodes[i], "opcode 0x%02X", i)
		assert.NotNil(t, opcodesCB[i], "opcode 0xCB%02X", i)
	}
}

func TestFlags(t *testing.T) {
	var f Flags

	f.SetZero(true)
	f.SetCarry(true)
	assert.Equal(t, Flags(0x90), f)
	assert.Equal(t, "Z--C", f.String())

	f.SetZero(false)
	f.SetSub(true)
	f.SetHalfCarry(true)
	assert.True(t, f.Sub())
	assert.True(t, f.HalfCarry())
	assert.False(t, f.Zero())
	assert.Equal(t, "-NHC", f.String())
}

func TestCPU_setRegistersMasksFlags(t *testing.T) {
	cpu, _, _ := newTestCPU()

	cpu.SetRegisters(Registers{A: 1, F: 0xFF, SP: 0xD000, PC: 0x0200})

	assert.Equal(t, uint8(0xF0), cpu.Registers().F)
	assert.Equal(t, uint16(0xD000), cpu.SP())
	assert.Equal(t, uint16(0x0200), cpu.PC())
}
