//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sweeney/washer-panel/internal/display"
	"github.com/sweeney/washer-panel/internal/logic"
)

// ButtonReader reads the buttons from actual hardware.
type ButtonReader struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
	vals  []int
}

// NewButtonReader requests the three button lines as inputs. Buttons pull
// the line high when pressed; with activeLow they pull it low instead and
// the internal pull-up is used.
func NewButtonReader(chipName string, pins ButtonPins, activeLow bool) (*ButtonReader, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullDown}
	if activeLow {
		opts = []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow}
	}
	offsets := []int{pins.Power, pins.Mode, pins.Start}
	lines, err := chip.RequestLines(offsets, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pins %v: %w", offsets, err)
	}

	return &ButtonReader{chip: chip, lines: lines, vals: make([]int, len(offsets))}, nil
}

// Read returns the logical button levels.
func (r *ButtonReader) Read() (logic.ButtonLevels, error) {
	if err := r.lines.Values(r.vals); err != nil {
		return logic.ButtonLevels{}, fmt.Errorf("read button pins: %w", err)
	}
	return logic.ButtonLevels{
		Power: r.vals[0] == 1,
		Mode:  r.vals[1] == 1,
		Start: r.vals[2] == 1,
	}, nil
}

// Close releases the lines. They are reconfigured to input with pull-down
// first, matching the Pi boot defaults.
func (r *ButtonReader) Close() error {
	var err error
	if r.lines != nil {
		if e := r.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); e != nil {
			err = multierr.Append(err, fmt.Errorf("reconfigure button pins: %w", e))
		}
		if e := r.lines.Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("close button pins: %w", e))
		}
	}
	if r.chip != nil {
		if e := r.chip.Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("close chip: %w", e))
		}
	}
	return err
}

// Outputs drives the LEDs and the segment lines. It implements display.Lines.
type Outputs struct {
	mu       sync.Mutex
	chip     *gpiocdev.Chip
	leds     *gpiocdev.Lines
	segments *gpiocdev.Lines
	ledVals  []int
	segVals  []int
}

// NewOutputs requests the LED and segment lines as outputs, all low.
func NewOutputs(chipName string, pins OutputPins) (*Outputs, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	ledVals := make([]int, len(pins.LEDs))
	leds, err := chip.RequestLines(pins.LEDs[:], gpiocdev.AsOutput(ledVals...))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request led pins %v: %w", pins.LEDs, err)
	}

	segVals := make([]int, len(pins.Segments))
	segments, err := chip.RequestLines(pins.Segments[:], gpiocdev.AsOutput(segVals...))
	if err != nil {
		leds.Close()
		chip.Close()
		return nil, fmt.Errorf("request segment pins %v: %w", pins.Segments, err)
	}

	return &Outputs{
		chip:     chip,
		leds:     leds,
		segments: segments,
		ledVals:  ledVals,
		segVals:  segVals,
	}, nil
}

// SetLED drives one LED line.
func (o *Outputs) SetLED(led display.LED, on bool) error {
	if led < 0 || int(led) >= len(o.ledVals) {
		return fmt.Errorf("set led: unknown led %d", led)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ledVals[led] = boolValue(on)
	if err := o.leds.SetValues(o.ledVals); err != nil {
		return fmt.Errorf("set %s led: %w", led, err)
	}
	return nil
}

// WriteSegments drives segments a-g from bits 0-6.
func (o *Outputs) WriteSegments(bits uint8) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	segmentValues(bits, o.segVals)
	if err := o.segments.SetValues(o.segVals); err != nil {
		return fmt.Errorf("write segments %#02x: %w", bits, err)
	}
	return nil
}

// Close drives every output low and releases the lines.
func (o *Outputs) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var err error
	for _, l := range []struct {
		name  string
		lines *gpiocdev.Lines
		vals  []int
	}{
		{"led", o.leds, o.ledVals},
		{"segment", o.segments, o.segVals},
	} {
		if l.lines == nil {
			continue
		}
		for i := range l.vals {
			l.vals[i] = 0
		}
		if e := l.lines.SetValues(l.vals); e != nil {
			err = multierr.Append(err, fmt.Errorf("clear %s pins: %w", l.name, e))
		}
		if e := l.lines.Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("close %s pins: %w", l.name, e))
		}
	}
	if o.chip != nil {
		if e := o.chip.Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("close chip: %w", e))
		}
	}
	return err
}

// ToneLine bit-bangs a square wave on the buzzer line. It implements
// buzzer.Driver.
type ToneLine struct {
	line   *gpiocdev.Line
	logger *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewToneLine requests the buzzer line as an output, low.
func NewToneLine(chipName string, pin int, logger *zap.Logger) (*ToneLine, error) {
	line, err := gpiocdev.RequestLine(chipName, pin, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("request buzzer pin %d: %w", pin, err)
	}
	return &ToneLine{line: line, logger: logger}, nil
}

// Start begins a square wave at hz, replacing any tone already sounding.
func (t *ToneLine) Start(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("start tone: invalid frequency %d", hz)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()

	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.square(time.Second/time.Duration(2*hz), t.stop, t.done)
	return nil
}

func (t *ToneLine) square(half time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(half)
	defer ticker.Stop()

	v := 0
	failed := false
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			v ^= 1
			if err := t.line.SetValue(v); err != nil && !failed {
				failed = true
				t.logger.Warn("buzzer line write failed", zap.Error(err))
			}
		}
	}
}

// Stop silences the buzzer and leaves the line low.
func (t *ToneLine) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	if err := t.line.SetValue(0); err != nil {
		return fmt.Errorf("silence buzzer: %w", err)
	}
	return nil
}

func (t *ToneLine) stopLocked() {
	if t.stop == nil {
		return
	}
	close(t.stop)
	<-t.done
	t.stop, t.done = nil, nil
}

// Close silences the buzzer and releases the line.
func (t *ToneLine) Close() error {
	return multierr.Append(t.Stop(), t.line.Close())
}
