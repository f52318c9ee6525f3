// Package interrupt implements the interrupt controller: the IE/IF registers,
// the master enable and the dispatch of pending interrupts to the CPU.
package interrupt

import (
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
)

// sourceMask covers the five interrupt sources in IE and IF.
const sourceMask uint8 = 0x1F

// priority lists the sources from highest to lowest priority.
var priority = [...]addr.Interrupt{
	addr.VBlankInterrupt,
	addr.LCDSTATInterrupt,
	addr.TimerInterrupt,
	addr.SerialInterrupt,
	addr.JoypadInterrupt,
}

// Target is the CPU side of an interrupt dispatch.
type Target interface {
	// Service pushes the current PC and jumps to vector, leaving halt.
	Service(vector uint16)
	Halted() bool
	Resume()
}

// Controller holds the interrupt state.
type Controller struct {
	master   bool
	enable   uint8
	flags    uint8
	suppress int
}

// New returns a controller in the power-on state: everything disabled.
func New() *Controller {
	return &Controller{}
}

// Request marks an interrupt as pending.
func (c *Controller) Request(i addr.Interrupt) {
	c.flags |= uint8(i)
}

// EnableInterrupts sets the master enable. Recognition is delayed by one
// dispatch so the instruction after EI always runs.
func (c *Controller) EnableInterrupts() {
	c.master = true
	c.suppress = 1
}

// DisableInterrupts clears the master enable immediately.
func (c *Controller) DisableInterrupts() {
	c.master = false
}

// Dispatch is called once per CPU step. It services at most one interrupt,
// the lowest numbered one that is both enabled and pending.
func (c *Controller) Dispatch(target Target) {
	if c.suppress > 0 {
		c.suppress--
		return
	}

	pending := c.enable & c.flags & sourceMask
	if pending == 0 {
		return
	}

	if !c.master {
		// a pending interrupt ends HALT even when it cannot be serviced
		if target.Halted() {
			target.Resume()
		}
		return
	}

	for _, i := range priority {
		if pending&uint8(i) == 0 {
			continue
		}

		c.flags &^= uint8(i)
		c.master = false
		slog.Debug("servicing interrupt", "source", i.String())
		target.Service(i.Vector())
		return
	}
}

// MasterEnabled reports the IME state.
func (c *Controller) MasterEnabled() bool { return c.master }

// Pending returns the interrupts that are both enabled and requested.
func (c *Controller) Pending() uint8 {
	return c.enable & c.flags & sourceMask
}

// ReadIF returns the IF register. The unused top bits read as 1.
func (c *Controller) ReadIF() uint8 { return c.flags | 0xE0 }

// WriteIF sets the IF register.
func (c *Controller) WriteIF(value uint8) { c.flags = value & sourceMask }

// ReadIE returns the IE register.
func (c *Controller) ReadIE() uint8 { return c.enable }

// WriteIE sets the IE register.
func (c *Controller) WriteIE(value uint8) { c.enable = value }
