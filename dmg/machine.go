// Package dmg ties the components together into a Machine and steps them in
// lockstep from the CPU cycle counter.
package dmg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/cpu"
	"github.com/valerio/go-dmg/dmg/debug"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/interrupt"
	"github.com/valerio/go-dmg/dmg/memory"
	"github.com/valerio/go-dmg/dmg/serial"
	"github.com/valerio/go-dmg/dmg/timer"
	"github.com/valerio/go-dmg/dmg/video"
)

// ctxCheckInterval is how many steps run between two context checks.
const ctxCheckInterval = 1024

// ErrStalled is returned when the CPU hit an undefined opcode and can make no
// further progress on its own.
var ErrStalled = errors.New("cpu stalled on undefined opcode")

// Config holds the options of a Machine.
type Config struct {
	// Trace logs every executed instruction at debug level.
	Trace bool
	// SerialTiming completes link port transfers after the real transfer
	// time instead of instantly.
	SerialTiming bool
	// Logger receives trace lines and serial output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Machine owns every component of the DMG and steps them in a fixed order:
// CPU, interrupt dispatch, timer, serial, PPU.
type Machine struct {
	bus        *memory.Bus
	cpu        *cpu.CPU
	interrupts *interrupt.Controller
	timer      *timer.Timer
	ppu        *video.PPU
	serial     *serial.LogSink
	joypad     *input.Joypad
	tracer     *debug.Tracer
	cartridge  *memory.Cartridge

	lastTick uint64
	frames   uint64
	paused   atomic.Bool
}

// New creates a machine in its power-on state with an empty ROM.
func New(config Config) *Machine {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Machine{
		bus:        memory.New(),
		interrupts: interrupt.New(),
		joypad:     input.NewJoypad(),
	}

	m.timer = timer.New(func() { m.interrupts.Request(addr.TimerInterrupt) })

	serialOpts := []serial.LogSinkOption{serial.WithLogger(logger)}
	if config.SerialTiming {
		serialOpts = append(serialOpts, serial.WithFixedTiming())
	}
	m.serial = serial.NewLogSink(func() { m.interrupts.Request(addr.SerialInterrupt) }, serialOpts...)

	m.ppu = video.New(m.bus, m.interrupts)
	m.cpu = cpu.New(m.bus, m.interrupts)

	m.bus.Connect(memory.Devices{
		Timer:      m.timer,
		Video:      m.ppu,
		Serial:     m.serial,
		Interrupts: m.interrupts,
		Input:      m.joypad,
	})

	if config.Trace {
		m.tracer = debug.NewTracer(m.bus, logger)
	}

	return m
}

// NewWithFile creates a machine and loads the cartridge at path into it.
func NewWithFile(config Config, path string) (*Machine, error) {
	cart, err := memory.LoadCartridge(path)
	if err != nil {
		return nil, err
	}

	m := New(config)
	m.InsertCartridge(cart)
	return m, nil
}

// InsertCartridge maps the cartridge ROM into the address space.
func (m *Machine) InsertCartridge(cart *memory.Cartridge) {
	m.cartridge = cart
	m.bus.LoadROM(cart.Data)
	slog.Info("Cartridge loaded", "cartridge", cart.String())
}

// LoadROM maps a raw ROM image without header parsing.
func (m *Machine) LoadROM(data []uint8) {
	m.bus.LoadROM(data)
}

// Step executes one instruction and advances the rest of the machine by
// the cycles it took. It returns true when a frame was completed.
func (m *Machine) Step() bool {
	if m.tracer != nil && !m.cpu.Halted() && !m.cpu.Stalled() {
		m.tracer.Trace(m.cpu.Registers(), m.cpu.Cycles())
	}

	m.cpu.Step()

	if m.joypad.TakePressed() {
		m.interrupts.Request(addr.JoypadInterrupt)
	}
	m.interrupts.Dispatch(m.cpu)

	now := m.cpu.Cycles()
	delta := now - m.lastTick
	m.lastTick = now

	m.timer.Tick(delta)
	m.serial.Tick(delta)

	if m.ppu.Tick(now) {
		m.frames++
		return true
	}
	return false
}

// RunUntilFrame steps until the PPU completes a frame. It returns ErrStalled
// if the CPU stops making progress before that.
func (m *Machine) RunUntilFrame() error {
	for steps := 1; ; steps++ {
		if m.Step() {
			return nil
		}
		if steps%ctxCheckInterval == 0 && m.cpu.Stalled() {
			return ErrStalled
		}
	}
}

// Run emulates frames and hands each of them to b until the backend asks to
// close or ctx is cancelled. A stalled or paused machine keeps presenting
// its last frame so the backend can still be closed.
func (m *Machine) Run(ctx context.Context, b backend.Backend) error {
	for {
		if err := m.runFrame(ctx); err != nil {
			return err
		}

		closeRequested, err := b.Update(m.ppu.FrameBuffer())
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}
		if closeRequested {
			return nil
		}
	}
}

func (m *Machine) runFrame(ctx context.Context) error {
	if m.paused.Load() {
		return ctx.Err()
	}

	for steps := 1; ; steps++ {
		if m.Step() {
			return nil
		}
		if steps%ctxCheckInterval != 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.cpu.Stalled() {
			return nil
		}
	}
}

// TogglePause pauses or resumes emulation. It is safe to call from a
// backend's input goroutine.
func (m *Machine) TogglePause() {
	paused := !m.paused.Load()
	m.paused.Store(paused)
	slog.Info("Emulation paused", "paused", paused)
}

// Paused reports whether emulation is paused.
func (m *Machine) Paused() bool {
	return m.paused.Load()
}

// Frame returns the frame buffer the PPU draws into.
func (m *Machine) Frame() *video.FrameBuffer { return m.ppu.FrameBuffer() }

// Frames returns the number of frames completed so far.
func (m *Machine) Frames() uint64 { return m.frames }

// Joypad returns the joypad backends feed input into.
func (m *Machine) Joypad() *input.Joypad { return m.joypad }

// Cartridge returns the inserted cartridge, or nil when only a raw ROM was
// loaded.
func (m *Machine) Cartridge() *memory.Cartridge { return m.cartridge }

// CPU exposes the processor, mostly for tests and debugging.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Bus exposes the address space.
func (m *Machine) Bus() *memory.Bus { return m.bus }

// Interrupts exposes the interrupt controller.
func (m *Machine) Interrupts() *interrupt.Controller { return m.interrupts }

// PPU exposes the picture processing unit.
func (m *Machine) PPU() *video.PPU { return m.ppu }

// SerialOutput returns everything written to the link port so far.
func (m *Machine) SerialOutput() string { return m.serial.Output() }
