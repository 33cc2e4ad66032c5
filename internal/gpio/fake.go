package gpio

import (
	"errors"

	"github.com/sweeney/washer-panel/internal/logic"
)

// FakeReader is a test double that returns scripted button levels.
type FakeReader struct {
	// Samples contains scripted levels to return.
	// Each call to Read() consumes the next sample.
	Samples []logic.ButtonLevels

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []logic.ButtonLevels) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (logic.ButtonLevels, error) {
	if f.ReadError != nil {
		return logic.ButtonLevels{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return logic.ButtonLevels{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// Press returns samples that hold one button for n ticks and then release it
// for one tick.
func Press(n int, set func(*logic.ButtonLevels)) []logic.ButtonLevels {
	out := make([]logic.ButtonLevels, n+1)
	for i := 0; i < n; i++ {
		set(&out[i])
	}
	return out
}

// Press helpers for the three buttons.
var (
	PowerButton = func(l *logic.ButtonLevels) { l.Power = true }
	ModeButton  = func(l *logic.ButtonLevels) { l.Mode = true }
	StartButton = func(l *logic.ButtonLevels) { l.Start = true }
)
