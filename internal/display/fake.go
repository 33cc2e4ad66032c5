package display

import (
	"context"
	"fmt"
)

// FakeLines records what a Port drives onto the hardware.
type FakeLines struct {
	LEDs     [NumLEDs]bool
	Segments uint8
	// Writes contains every segment pattern written, in order.
	Writes []uint8
	// Err, if set, is returned by every call.
	Err error
}

// SetLED records the LED level.
func (f *FakeLines) SetLED(led LED, on bool) error {
	if f.Err != nil {
		return f.Err
	}
	if led < 0 || led >= NumLEDs {
		return fmt.Errorf("unknown led %d", led)
	}
	f.LEDs[led] = on
	return nil
}

// WriteSegments records the pattern.
func (f *FakeLines) WriteSegments(bits uint8) error {
	if f.Err != nil {
		return f.Err
	}
	f.Segments = bits
	f.Writes = append(f.Writes, bits)
	return nil
}

// FakePort is an instant indicator/display double that records glyphs
// rather than segment patterns.
type FakePort struct {
	Power   bool
	Mode1   bool
	Mode2   bool
	Running bool
	Warning bool

	// Glyphs contains every glyph shown, in order.
	Glyphs []rune
	// Clears counts calls to Clear.
	Clears int
	// OnShow, if set, is called after each glyph is recorded.
	OnShow func(glyph rune)
	// Err, if set, is returned by every call after recording it.
	Err error
}

func (f *FakePort) SetPower(on bool) error {
	f.Power = on
	return f.Err
}

func (f *FakePort) SetMode1(on bool) error {
	f.Mode1 = on
	return f.Err
}

func (f *FakePort) SetMode2(on bool) error {
	f.Mode2 = on
	return f.Err
}

func (f *FakePort) SetRunning(on bool) error {
	f.Running = on
	return f.Err
}

func (f *FakePort) SetWarning(on bool) error {
	f.Warning = on
	return f.Err
}

// Show records glyph.
func (f *FakePort) Show(ctx context.Context, glyph rune) error {
	f.Glyphs = append(f.Glyphs, glyph)
	if f.OnShow != nil {
		f.OnShow(glyph)
	}
	if f.Err != nil {
		return f.Err
	}
	return ctx.Err()
}

// Clear counts the call.
func (f *FakePort) Clear(ctx context.Context) error {
	f.Clears++
	if f.Err != nil {
		return f.Err
	}
	return ctx.Err()
}

// AnyLED reports whether any indicator is lit.
func (f *FakePort) AnyLED() bool {
	return f.Power || f.Mode1 || f.Mode2 || f.Running || f.Warning
}

// Digits returns the shown glyphs that are decimal digits, as a string.
func (f *FakePort) Digits() string {
	var out []rune
	for _, g := range f.Glyphs {
		if g >= '0' && g <= '9' {
			out = append(out, g)
		}
	}
	return string(out)
}
