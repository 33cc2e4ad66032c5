// Package display drives the panel LEDs and the single-digit 7-segment display.
package display

import (
	"context"
	"time"

	"github.com/sweeney/washer-panel/internal/clock"
)

const (
	// SettleTime is how long Show holds a glyph before returning.
	SettleTime = 500 * time.Millisecond
	// ClearTime is how long Clear holds the blank display.
	ClearTime = 200 * time.Millisecond
)

// LED identifies one panel indicator.
type LED int

const (
	LEDPower LED = iota
	LEDMode1
	LEDMode2
	LEDRunning
	LEDWarning

	NumLEDs = 5
)

func (l LED) String() string {
	switch l {
	case LEDPower:
		return "power"
	case LEDMode1:
		return "mode1"
	case LEDMode2:
		return "mode2"
	case LEDRunning:
		return "running"
	case LEDWarning:
		return "warning"
	}
	return "unknown"
}

// Lines is the hardware under the panel: LED lines and the segment bus.
type Lines interface {
	SetLED(led LED, on bool) error
	// WriteSegments drives segments a-g from bits 0-6.
	WriteSegments(bits uint8) error
}

// Port is the indicator and display port of the panel.
type Port struct {
	lines Lines
	clock clock.Clock
}

// NewPort creates a Port over the given lines. Holds are timed with clk.
func NewPort(lines Lines, clk clock.Clock) *Port {
	return &Port{lines: lines, clock: clk}
}

func (p *Port) SetPower(on bool) error   { return p.lines.SetLED(LEDPower, on) }
func (p *Port) SetMode1(on bool) error   { return p.lines.SetLED(LEDMode1, on) }
func (p *Port) SetMode2(on bool) error   { return p.lines.SetLED(LEDMode2, on) }
func (p *Port) SetRunning(on bool) error { return p.lines.SetLED(LEDRunning, on) }
func (p *Port) SetWarning(on bool) error { return p.lines.SetLED(LEDWarning, on) }

// Show renders glyph and holds it for SettleTime. Glyphs outside 0-9 and
// A-Z leave the segments unchanged but still hold.
func (p *Port) Show(ctx context.Context, glyph rune) error {
	if bits, ok := Encode(glyph); ok {
		if err := p.lines.WriteSegments(bits); err != nil {
			return err
		}
	}
	return p.clock.Sleep(ctx, SettleTime)
}

// Clear blanks the display and holds for ClearTime.
func (p *Port) Clear(ctx context.Context) error {
	if err := p.lines.WriteSegments(0); err != nil {
		return err
	}
	return p.clock.Sleep(ctx, ClearTime)
}
