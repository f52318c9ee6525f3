package timing

import (
	"context"
	"log/slog"
	"time"
)

// maxLag is how far behind schedule the limiter may fall before it gives up
// catching up and restarts the schedule from the current time.
const maxLag = 5 * time.Millisecond

// AdaptiveLimiter keeps a running schedule of frame deadlines, so a slow frame
// is compensated by shorter waits on the following ones.
type AdaptiveLimiter struct {
	frame  time.Duration
	next   time.Time
	frames int64
	skips  int64

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAdaptiveLimiter creates a limiter targeting FrameDuration.
func NewAdaptiveLimiter() *AdaptiveLimiter {
	return newAdaptiveLimiter(FrameDuration(), time.Now, sleepContext)
}

func newAdaptiveLimiter(frame time.Duration, now func() time.Time, sleep func(context.Context, time.Duration) error) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		frame: frame,
		next:  now(),
		now:   now,
		sleep: sleep,
	}
}

func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	now := a.now()
	remaining := a.next.Sub(now)

	switch {
	case remaining > 0:
		if err := a.sleep(ctx, remaining); err != nil {
			return err
		}
	case remaining < -maxLag:
		a.skips++
		a.next = now
	}

	a.next = a.next.Add(a.frame)
	a.frames++

	if a.frames%600 == 0 && a.skips > 0 {
		slog.Debug("Frame limiter fell behind", "frames", a.frames, "resyncs", a.skips)
	}

	return ctx.Err()
}

func (a *AdaptiveLimiter) Reset() {
	a.next = a.now()
	a.frames = 0
	a.skips = 0
}

// Frames returns how many frames were paced since the last reset.
func (a *AdaptiveLimiter) Frames() int64 {
	return a.frames
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
