package logic

import "time"

// DefaultDebounce is how long a button must stay pressed before it counts.
const DefaultDebounce = 50 * time.Millisecond

// Debouncer turns the sampled level of one button line into press events.
type Debouncer struct {
	minStable time.Duration
	// Whether the first sample has been taken. A line already asserted at
	// that point has no observed rising edge and never fires.
	baselined bool
	// Level seen on the previous sample
	level bool
	// Time of the rising edge being debounced
	pressedAt time.Time
	// A rising edge is waiting out minStable
	armed bool
}

// NewDebouncer creates a debouncer that fires once a press has been held
// for at least minStable.
func NewDebouncer(minStable time.Duration) *Debouncer {
	return &Debouncer{minStable: minStable}
}

// Process takes one sample of the line and reports whether a press fired.
// A press fires exactly once, on the first sample at least minStable after
// the rising edge. Releasing earlier discards it; release never fires.
func (d *Debouncer) Process(level bool, now time.Time) bool {
	if !d.baselined {
		d.baselined = true
		d.level = level
		return false
	}

	if !level {
		d.level = false
		d.armed = false
		return false
	}

	if !d.level {
		// Rising edge
		d.level = true
		d.armed = true
		d.pressedAt = now
	}

	if d.armed && now.Sub(d.pressedAt) >= d.minStable {
		d.armed = false
		return true
	}
	return false
}

// Pending reports whether a press is being debounced.
func (d *Debouncer) Pending() bool {
	return d.armed
}

// Reset forgets the line history. The next sample becomes a new baseline.
func (d *Debouncer) Reset() {
	*d = Debouncer{minStable: d.minStable}
}

// Buttons debounces the power, mode and start lines independently.
type Buttons struct {
	power Debouncer
	mode  Debouncer
	start Debouncer
}

// NewButtons creates debouncers for all three panel buttons.
func NewButtons(minStable time.Duration) *Buttons {
	return &Buttons{
		power: Debouncer{minStable: minStable},
		mode:  Debouncer{minStable: minStable},
		start: Debouncer{minStable: minStable},
	}
}

// Process feeds one sample of all lines and returns the presses that fired.
func (b *Buttons) Process(levels ButtonLevels, now time.Time) ButtonEvents {
	return ButtonEvents{
		Power: b.power.Process(levels.Power, now),
		Mode:  b.mode.Process(levels.Mode, now),
		Start: b.start.Process(levels.Start, now),
	}
}

// Pending reports whether any line has a press being debounced.
func (b *Buttons) Pending() bool {
	return b.power.Pending() || b.mode.Pending() || b.start.Pending()
}

// Reset re-baselines all lines. Used after samples were missed, so a line
// that is high again is not mistaken for a press held throughout the gap.
func (b *Buttons) Reset() {
	b.power.Reset()
	b.mode.Reset()
	b.start.Reset()
}
