package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-dmg/dmg/addr"
)

func newCountingTimer() (*Timer, *int) {
	fired := 0
	return New(func() { fired++ }), &fired
}

func TestTimer_fullCounterOverflowsOnce(t *testing.T) {
	timer, fired := newCountingTimer()
	timer.Write(addr.TAC, 0x07)

	// 256 increments at 64 cycles each, fed in uneven deltas
	total := uint64(0)
	deltas := []uint64{1, 2, 3, 4, 5, 6}
	for i := 0; total < 256*64; i++ {
		d := deltas[i%len(deltas)]
		if total+d > 256*64 {
			d = 256*64 - total
		}
		timer.Tick(d)
		total += d
	}

	assert.Equal(t, 1, *fired)
	assert.Equal(t, uint8(0), timer.Read(addr.TIMA))
}

func TestTimer_overflowWithinOneThousandTwentyFourCycles(t *testing.T) {
	timer, fired := newCountingTimer()
	timer.Write(addr.TAC, 0x07)
	timer.Write(addr.TIMA, 0xF0)
	timer.Write(addr.TMA, 0xAB)

	for i := 0; i < 256*4; i++ {
		timer.Tick(1)
	}

	assert.Equal(t, 1, *fired)
	assert.Equal(t, uint8(0xAB), timer.Read(addr.TIMA))
}

func TestTimer_rates(t *testing.T) {
	testCases := []struct {
		desc   string
		tac    uint8
		cycles uint64
	}{
		{desc: "00 every 256 cycles", tac: 0x04, cycles: 256},
		{desc: "01 every 4 cycles", tac: 0x05, cycles: 4},
		{desc: "10 every 16 cycles", tac: 0x06, cycles: 16},
		{desc: "11 every 64 cycles", tac: 0x07, cycles: 64},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			timer, _ := newCountingTimer()
			timer.Write(addr.TAC, tC.tac)

			timer.Tick(tC.cycles - 1)
			assert.Equal(t, uint8(0), timer.Read(addr.TIMA))

			timer.Tick(1)
			assert.Equal(t, uint8(1), timer.Read(addr.TIMA))
		})
	}
}

func TestTimer_stopped(t *testing.T) {
	timer, fired := newCountingTimer()
	timer.Write(addr.TAC, 0x03)
	timer.Write(addr.TIMA, 0xFF)

	timer.Tick(10000)

	assert.Equal(t, 0, *fired)
	assert.Equal(t, uint8(0xFF), timer.Read(addr.TIMA))
	assert.NotZero(t, timer.Read(addr.DIV), "divider runs regardless of TAC")
}

func TestTimer_divider(t *testing.T) {
	timer, _ := newCountingTimer()

	timer.Tick(3)
	assert.Equal(t, uint8(0), timer.Read(addr.DIV))

	timer.Tick(1)
	assert.Equal(t, uint8(1), timer.Read(addr.DIV), "one step per 16 sub-ticks")

	timer.Tick(4)
	assert.Equal(t, uint8(2), timer.Read(addr.DIV))

	timer.Tick(4 * 254)
	assert.Equal(t, uint8(0), timer.Read(addr.DIV), "wraps after 256 increments")

	timer.Tick(4 * 5)
	timer.Write(addr.DIV, 0x42)
	assert.Equal(t, uint8(0), timer.Read(addr.DIV))
}

func TestTimer_registers(t *testing.T) {
	timer, _ := newCountingTimer()

	timer.Write(addr.TMA, 0x12)
	timer.Write(addr.TIMA, 0x34)
	timer.Write(addr.TAC, 0xFD)

	assert.Equal(t, uint8(0x12), timer.Read(addr.TMA))
	assert.Equal(t, uint8(0x34), timer.Read(addr.TIMA))
	assert.Equal(t, uint8(0xFD), timer.Read(addr.TAC))
	assert.Equal(t, uint8(0xFF), timer.Read(0xFF08))
}
