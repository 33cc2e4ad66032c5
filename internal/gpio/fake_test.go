package gpio

import (
	"errors"
	"testing"

	"github.com/sweeney/washer-panel/internal/logic"
)

func TestFakeReaderRead(t *testing.T) {
	samples := []logic.ButtonLevels{
		{Power: true},
		{Mode: true},
		{Power: true, Start: true},
	}

	f := NewFakeReader(samples)

	for i, want := range samples {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("sample %d: expected %+v, got %+v", i, want, got)
		}
	}

	// Fourth read should repeat last sample
	got, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != samples[2] {
		t.Errorf("sample 3 (repeat): expected %+v, got %+v", samples[2], got)
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	_, err := f.Read()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]logic.ButtonLevels{{Power: true}})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader([]logic.ButtonLevels{{}})

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeReaderReset(t *testing.T) {
	f := NewFakeReader([]logic.ButtonLevels{{Power: true}, {Mode: true}})

	// Consume first sample
	f.Read()

	f.Reset()

	got, _ := f.Read()
	if !got.Power || got.Mode {
		t.Errorf("after reset: expected power only, got %+v", got)
	}
}

func TestPress(t *testing.T) {
	samples := Press(3, ModeButton)

	if len(samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(samples))
	}
	for i := 0; i < 3; i++ {
		if samples[i] != (logic.ButtonLevels{Mode: true}) {
			t.Errorf("sample %d: expected mode held, got %+v", i, samples[i])
		}
	}
	if samples[3] != (logic.ButtonLevels{}) {
		t.Errorf("expected release, got %+v", samples[3])
	}
}

func TestSegmentValues(t *testing.T) {
	vals := make([]int, 7)

	segmentValues(0x6D, vals) // '5': a c d f g
	want := []int{1, 0, 1, 1, 0, 1, 1}
	for i := range want {
		if vals[i] != want[i] {
			t.Errorf("segment %d: expected %d, got %d", i, want[i], vals[i])
		}
	}

	segmentValues(0, vals)
	for i, v := range vals {
		if v != 0 {
			t.Errorf("segment %d: expected 0 after clear, got %d", i, v)
		}
	}
}
