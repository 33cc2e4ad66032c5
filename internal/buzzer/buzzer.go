// Package buzzer plays fixed tones and tunes on the panel buzzer.
package buzzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/sweeney/washer-panel/internal/clock"
)

// Note is a tone frequency in Hz.
type Note int

const (
	C4 Note = 262
	D4 Note = 294
	E4 Note = 330
	F4 Note = 349
	G4 Note = 392
	A4 Note = 440
	B4 Note = 494
	C5 Note = 523
	D5 Note = 587
	E5 Note = 659
	F5 Note = 698
	G5 Note = 784
	A5 Note = 880
	B5 Note = 988
	C6 Note = 1047
)

// ToneDuration is how long each note sounds.
const ToneDuration = 250 * time.Millisecond

// Fixed tunes.
var (
	PowerOnNote    = C5
	ModeSelectNote = E5
	StartTune      = []Note{C4, E4, G4, C5, D5, F5, A4, B4}
	FinishTune     = []Note{G4, A4, C5, E4, B4, F5, D5, C4}
	WarningPattern = []Note{C6, C6, C6}
)

// Driver generates a square wave on the buzzer line.
type Driver interface {
	Start(hz int) error
	Stop() error
}

// Player sequences notes on a Driver.
type Player struct {
	drv   Driver
	clock clock.Clock
}

// NewPlayer creates a Player. Note durations are timed with clk.
func NewPlayer(drv Driver, clk clock.Clock) *Player {
	return &Player{drv: drv, clock: clk}
}

// PlayTone sounds n for ToneDuration and then silences the buzzer.
// The buzzer is silenced even when ctx is cancelled mid-note.
func (p *Player) PlayTone(ctx context.Context, n Note) error {
	if n <= 0 {
		return fmt.Errorf("play tone: invalid frequency %d", n)
	}
	if err := p.drv.Start(int(n)); err != nil {
		return fmt.Errorf("play tone %d: %w", n, err)
	}
	err := p.clock.Sleep(ctx, ToneDuration)
	if stopErr := p.drv.Stop(); stopErr != nil {
		err = multierr.Append(err, fmt.Errorf("stop tone %d: %w", n, stopErr))
	}
	return err
}

// PlaySequence plays notes back to back. A failed note is skipped; the
// sequence stops early only when ctx is done.
func (p *Player) PlaySequence(ctx context.Context, notes []Note) error {
	var errs error
	for _, n := range notes {
		if err := p.PlayTone(ctx, n); err != nil {
			errs = multierr.Append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return errs
}

// PlayWarning plays the three-note warning pattern.
func (p *Player) PlayWarning(ctx context.Context) error {
	return p.PlaySequence(ctx, WarningPattern)
}
