package buzzer

import (
	"context"
	"sync"
)

// FakeDriver records Start/Stop calls.
type FakeDriver struct {
	mu      sync.Mutex
	Started []int
	Stops   int
	// Playing is the frequency currently sounding, 0 when silent.
	Playing int

	StartErr error
	StopErr  error
}

// Start records hz.
func (f *FakeDriver) Start(hz int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return f.StartErr
	}
	f.Started = append(f.Started, hz)
	f.Playing = hz
	return nil
}

// Stop silences the fake.
func (f *FakeDriver) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Stops++
	f.Playing = 0
	return f.StopErr
}

// Fake is an instant buzzer that records what would have been played.
type Fake struct {
	Tones     []Note
	Sequences [][]Note
	Warnings  int
	// Err, if set, is returned by every call after recording it.
	Err error
}

// PlayTone records n.
func (f *Fake) PlayTone(ctx context.Context, n Note) error {
	f.Tones = append(f.Tones, n)
	if f.Err != nil {
		return f.Err
	}
	return ctx.Err()
}

// PlaySequence records a copy of notes.
func (f *Fake) PlaySequence(ctx context.Context, notes []Note) error {
	f.Sequences = append(f.Sequences, append([]Note(nil), notes...))
	if f.Err != nil {
		return f.Err
	}
	return ctx.Err()
}

// PlayWarning counts the call.
func (f *Fake) PlayWarning(ctx context.Context) error {
	f.Warnings++
	if f.Err != nil {
		return f.Err
	}
	return ctx.Err()
}
