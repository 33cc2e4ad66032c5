package logic

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// at returns t0 plus n ticks of 50ms.
func at(n int) time.Time {
	return t0.Add(time.Duration(n) * 50 * time.Millisecond)
}

// baselinedDebouncer returns a debouncer that has seen one released sample.
func baselinedDebouncer(t *testing.T) *Debouncer {
	t.Helper()
	d := NewDebouncer(DefaultDebounce)
	if d.Process(false, at(0)) {
		t.Fatal("baseline sample must not fire")
	}
	return d
}

func TestNewDebouncer(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	if d == nil {
		t.Fatal("NewDebouncer returned nil")
	}
	if d.minStable != 50*time.Millisecond {
		t.Errorf("expected minStable 50ms, got %v", d.minStable)
	}
	if d.baselined {
		t.Error("new debouncer should not be baselined")
	}
	if d.Pending() {
		t.Error("new debouncer should have nothing pending")
	}
}

func TestPressFiresAfterStableInterval(t *testing.T) {
	d := baselinedDebouncer(t)

	// Rising edge starts the timer
	if d.Process(true, at(1)) {
		t.Error("press must not fire on the rising edge")
	}
	if !d.Pending() {
		t.Error("press should be pending after the rising edge")
	}

	// 50ms later, still held
	if !d.Process(true, at(2)) {
		t.Error("press should fire once held for 50ms")
	}
	if d.Pending() {
		t.Error("nothing should be pending after firing")
	}
}

func TestHeldButtonFiresOnce(t *testing.T) {
	d := baselinedDebouncer(t)

	fired := 0
	for i := 1; i <= 40; i++ {
		if d.Process(true, at(i)) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("expected exactly 1 event for a held button, got %d", fired)
	}
}

func TestReleaseDoesNotFire(t *testing.T) {
	d := baselinedDebouncer(t)
	d.Process(true, at(1))
	d.Process(true, at(2)) // fires

	for i := 3; i < 10; i++ {
		if d.Process(false, at(i)) {
			t.Errorf("tick %d: release must not fire", i)
		}
	}
}

func TestBounceShorterThanDebounce(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	d.Process(false, at(0))

	// Pressed for 50ms then released: noise
	if d.Process(true, at(1)) {
		t.Error("expected no event on rising edge")
	}
	if d.Process(false, at(2)) {
		t.Error("expected no event on early release")
	}
	if d.Pending() {
		t.Error("bounce should be discarded")
	}

	// Past the first deadline, still released
	if d.Process(false, at(4)) {
		t.Error("discarded bounce must never fire")
	}
}

func TestTimerRestartsOnEachRisingEdge(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	d.Process(false, at(0))

	// true,false,true: the second rising edge at tick 3 restarts the interval
	d.Process(true, at(1))
	d.Process(false, at(2))
	d.Process(true, at(3))

	if d.Process(true, at(4)) {
		t.Error("expected no event 50ms after the second rising edge")
	}
	if !d.Process(true, at(5)) {
		t.Error("expected event 100ms after the second rising edge")
	}
}

func TestAssertedAtStartupNeverFires(t *testing.T) {
	d := NewDebouncer(DefaultDebounce)

	// Button held down while the daemon starts: no rising edge observed
	for i := 0; i < 10; i++ {
		if d.Process(true, at(i)) {
			t.Fatalf("tick %d: held-at-startup line must not fire", i)
		}
	}

	// Release and press again: fires normally
	d.Process(false, at(10))
	d.Process(true, at(11))
	if !d.Process(true, at(12)) {
		t.Error("expected event for the first real press")
	}
}

func TestZeroDebounceFiresOnRisingEdge(t *testing.T) {
	d := NewDebouncer(0)
	d.Process(false, at(0))
	if !d.Process(true, at(1)) {
		t.Error("expected immediate event with zero debounce")
	}
}

func TestButtonsAreIndependent(t *testing.T) {
	b := NewButtons(DefaultDebounce)
	b.Process(ButtonLevels{}, at(0))

	// Power pressed first, mode pressed one tick later
	ev := b.Process(ButtonLevels{Power: true}, at(1))
	if ev.Any() {
		t.Errorf("expected no events on rising edge, got %+v", ev)
	}

	ev = b.Process(ButtonLevels{Power: true, Mode: true}, at(2))
	if !ev.Power || ev.Mode || ev.Start {
		t.Errorf("expected only power to fire, got %+v", ev)
	}

	ev = b.Process(ButtonLevels{Power: true, Mode: true}, at(3))
	if ev.Power || !ev.Mode || ev.Start {
		t.Errorf("expected only mode to fire, got %+v", ev)
	}

	// Start pulse shorter than debounce is ignored without touching the others
	b.Process(ButtonLevels{Start: true}, at(4))
	ev = b.Process(ButtonLevels{}, at(5))
	if ev.Any() {
		t.Errorf("expected no events after start bounce, got %+v", ev)
	}
}

func TestButtonsResetDropsArmedPress(t *testing.T) {
	b := NewButtons(DefaultDebounce)
	b.Process(ButtonLevels{}, at(0))

	// Mode edge armed just before samples stop.
	b.Process(ButtonLevels{Mode: true}, at(1))
	if !b.Pending() {
		t.Fatal("expected mode press pending")
	}

	b.Reset()
	if b.Pending() {
		t.Error("expected nothing pending after reset")
	}

	// Line high again long after: it is the new baseline, not a held press.
	if ev := b.Process(ButtonLevels{Mode: true}, at(200)); ev.Any() {
		t.Errorf("expected no event on first sample after reset, got %+v", ev)
	}
	if ev := b.Process(ButtonLevels{Mode: true}, at(202)); ev.Any() {
		t.Errorf("expected line held across reset never to fire, got %+v", ev)
	}

	// A fresh press still works.
	b.Process(ButtonLevels{}, at(203))
	b.Process(ButtonLevels{Mode: true}, at(204))
	if ev := b.Process(ButtonLevels{Mode: true}, at(205)); !ev.Mode {
		t.Errorf("expected fresh press to fire, got %+v", ev)
	}
}

// Events never exceed the number of rising edges and never fire on a low sample.
func TestDebouncerPropertyAtMostOneEventPerPress(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		levels := rapid.SliceOfN(rapid.Bool(), 1, 80).Draw(t, "levels")
		stable := time.Duration(rapid.IntRange(0, 6).Draw(t, "stable-ticks")) * 50 * time.Millisecond

		d := NewDebouncer(stable)
		prev := levels[0]
		rising, events := 0, 0
		for i, level := range levels {
			fired := d.Process(level, at(i))
			if fired {
				events++
				if !level {
					t.Fatalf("tick %d: fired on a released line", i)
				}
			}
			if i > 0 && level && !prev {
				rising++
			}
			prev = level
		}
		if events > rising {
			t.Fatalf("%d events for %d rising edges", events, rising)
		}
	})
}
