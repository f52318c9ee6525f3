// Package timing paces presentation backends to the DMG frame rate. The core
// itself never sleeps; only backends that show frames to a person use this.
package timing

import (
	"context"
	"time"
)

const (
	// ClocksPerFrame is the number of dots in one full frame, VBlank included.
	ClocksPerFrame = 70224
	// ClockFrequency is the DMG master clock in Hz.
	ClockFrequency = 4194304
)

// TargetFPS is the exact DMG refresh rate, a little under 60.
func TargetFPS() float64 {
	return float64(ClockFrequency) / float64(ClocksPerFrame)
}

// FrameDuration returns the wall-clock length of one frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// Limiter blocks a presentation loop until the next frame is due.
type Limiter interface {
	// Wait returns once the next frame is due, or early with the context's
	// error if it gets cancelled.
	Wait(ctx context.Context) error
	// Reset restarts the schedule from now, after a pause for example.
	Reset()
}

// NewNoOpLimiter returns a limiter that never waits, for headless runs.
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) Wait(ctx context.Context) error { return ctx.Err() }
func (noOpLimiter) Reset()                         {}
