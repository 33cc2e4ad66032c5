package clock

import (
	"context"
	"time"
)

// Fake is a manual clock for tests. Sleep returns immediately after moving
// the clock forward, running any hooks whose time has been reached.
// Not safe for concurrent use.
type Fake struct {
	start time.Time
	now   time.Time
	hooks []hook

	// Sleeps records every requested sleep duration.
	Sleeps []time.Duration
}

type hook struct {
	at    time.Time
	fn    func()
	fired bool
}

// NewFake creates a Fake clock reading start.
func NewFake(start time.Time) *Fake {
	return &Fake{start: start, now: start}
}

// Now returns the current fake time.
func (f *Fake) Now() time.Time {
	return f.now
}

// Sleep advances the clock by d and then runs due hooks in registration order.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Sleeps = append(f.Sleeps, d)
	if d > 0 {
		f.now = f.now.Add(d)
	}
	for i := range f.hooks {
		h := &f.hooks[i]
		if !h.fired && !h.at.After(f.now) {
			h.fired = true
			h.fn()
		}
	}
	return ctx.Err()
}

// At registers fn to run once the clock has moved offset past its start.
func (f *Fake) At(offset time.Duration, fn func()) {
	f.hooks = append(f.hooks, hook{at: f.start.Add(offset), fn: fn})
}

// Elapsed returns how far the clock has moved since it was created.
func (f *Fake) Elapsed() time.Duration {
	return f.now.Sub(f.start)
}
