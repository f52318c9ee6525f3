// Package timer implements DIV, TIMA, TMA and TAC.
package timer

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

const (
	// clocksPerMachineCycle converts a CPU cycle delta into timer sub-ticks.
	clocksPerMachineCycle = 4
	// subTicksPerTick is the timer resolution: one tick every 16 clocks.
	subTicksPerTick = 16
)

// rateLookup maps TAC bits 1-0 to the number of ticks between TIMA increments.
//
//	00 -> 64 ticks (1024 clocks, 4096 Hz)
//	01 ->  1 tick  (16 clocks, 262144 Hz)
//	10 ->  4 ticks (64 clocks, 65536 Hz)
//	11 -> 16 ticks (256 clocks, 16384 Hz)
var rateLookup = [4]int{64, 1, 4, 16}

// Timer encapsulates the timer registers and their clocking.
type Timer struct {
	subTicks uint64
	divider  uint8 // ticks since the last DIV reset, read back as DIV
	ticks    int   // ticks since the last TIMA increment

	tima uint8
	tma  uint8
	tac  uint8
	rate int

	// InterruptHandler is called when TIMA overflows.
	InterruptHandler func()
}

// New returns a stopped timer with all registers at zero.
func New(onOverflow func()) *Timer {
	return &Timer{
		rate:             rateLookup[0],
		InterruptHandler: onOverflow,
	}
}

// Tick advances the timer by the given amount of machine cycles.
func (t *Timer) Tick(delta uint64) {
	t.subTicks += delta * clocksPerMachineCycle

	for t.subTicks >= subTicksPerTick {
		t.subTicks -= subTicksPerTick
		t.divider++

		if !t.started() {
			continue
		}

		t.ticks++
		if t.ticks >= t.rate {
			t.ticks = 0
			t.incrementTIMA()
		}
	}
}

func (t *Timer) started() bool {
	return bit.IsSet(2, t.tac)
}

func (t *Timer) incrementTIMA() {
	if t.tima == 0xFF {
		t.tima = t.tma
		if t.InterruptHandler != nil {
			t.InterruptHandler()
		}
		return
	}
	t.tima++
}

func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return t.divider
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		// any write resets the divider and the prescaler behind it
		t.divider = 0
		t.ticks = 0
		t.subTicks = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
		t.rate = rateLookup[value&0x03]
	}
}
