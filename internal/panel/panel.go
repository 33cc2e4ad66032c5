// Package panel runs the washer control state machine. It consumes debounced
// button events, reads the sensors on demand and drives the indicators,
// display and buzzer.
package panel

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/washer-panel/internal/buzzer"
	"github.com/sweeney/washer-panel/internal/clock"
	"github.com/sweeney/washer-panel/internal/logic"
)

const (
	// PausePoll is how often the light level is rechecked while paused
	// and while counting down.
	PausePoll = 200 * time.Millisecond
	// CountInterval is the length of one countdown step.
	CountInterval = time.Second
	// CompleteSettle is the pause between the finish tune and the reset.
	CompleteSettle = 50 * time.Millisecond
)

// Sensors returns calibrated readings.
type Sensors interface {
	Temperature() (float32, error)
	Light() (float32, error)
	Pressure() (float32, error)
}

// Indicators drives the LEDs and the 7-segment display.
type Indicators interface {
	SetPower(on bool) error
	SetMode1(on bool) error
	SetMode2(on bool) error
	SetRunning(on bool) error
	SetWarning(on bool) error
	Show(ctx context.Context, glyph rune) error
	Clear(ctx context.Context) error
}

// Buzzer plays notes.
type Buzzer interface {
	PlayTone(ctx context.Context, n buzzer.Note) error
	PlaySequence(ctx context.Context, notes []buzzer.Note) error
	PlayWarning(ctx context.Context) error
}

// Controller owns the panel state. It is not safe for concurrent use; the
// control loop is its only caller.
type Controller struct {
	sensors Sensors
	out     Indicators
	bz      Buzzer
	clock   clock.Clock
	logger  *zap.Logger

	state     logic.State
	mode      logic.Mode
	lidOpened bool
	counts    logic.Counts

	// shown is the glyph last rendered, 0 when blank or unknown.
	shown rune
}

// New creates a Controller in the OFF state. Call Init before the first Step.
func New(sensors Sensors, out Indicators, bz Buzzer, clk clock.Clock, logger *zap.Logger) *Controller {
	return &Controller{
		sensors: sensors,
		out:     out,
		bz:      bz,
		clock:   clk,
		logger:  logger,
		state:   logic.StateOff,
		mode:    logic.ModeNone,
	}
}

// State returns the current operating state.
func (c *Controller) State() logic.State { return c.state }

// Mode returns the selected wash mode.
func (c *Controller) Mode() logic.Mode { return c.mode }

// LidOpened reports whether the running cycle is paused on an open lid.
func (c *Controller) LidOpened() bool { return c.lidOpened }

// Counts returns activity counters.
func (c *Controller) Counts() logic.Counts { return c.counts }

// Init drives every output to its power-off level.
func (c *Controller) Init(ctx context.Context) error {
	c.state = logic.StateOff
	c.logger.Info("panel initialised")
	return c.reset(ctx)
}

// Step handles the button events of one tick, in the order power, mode,
// start. A start press that passes the parameter check runs the whole wash
// cycle before Step returns. Hardware errors are logged; the returned error
// is non-nil only when ctx is done.
func (c *Controller) Step(ctx context.Context, ev logic.ButtonEvents) error {
	if ev.Power {
		if err := c.togglePower(ctx); err != nil {
			return err
		}
	}
	if c.state == logic.StateOff {
		return nil
	}
	if ev.Mode && (c.state == logic.StateIdle || c.state == logic.StateModeSelect) {
		if err := c.selectMode(ctx); err != nil {
			return err
		}
	}
	if ev.Start && c.state == logic.StateIdle {
		if err := c.start(ctx); err != nil {
			return err
		}
	}
	return c.refreshDisplay(ctx)
}

// Shutdown drives every output off. The panel is left OFF.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.logger.Info("panel shutting down", zap.Stringer("state", c.state))
	c.state = logic.StateOff
	c.lidOpened = false
	return c.reset(ctx)
}

// ReadSensors samples all three sensors.
func (c *Controller) ReadSensors() (logic.Snapshot, error) {
	var (
		s   logic.Snapshot
		err error
	)
	if s.TemperatureC, err = c.sensors.Temperature(); err != nil {
		return s, err
	}
	if s.LightPct, err = c.sensors.Light(); err != nil {
		return s, err
	}
	if s.PressurePct, err = c.sensors.Pressure(); err != nil {
		return s, err
	}
	return s, nil
}

func (c *Controller) togglePower(ctx context.Context) error {
	if c.state == logic.StateOff {
		c.state = logic.StateIdle
		c.counts.PowerOn++
		if err := c.reset(ctx); err != nil {
			return err
		}
		c.led("power", c.out.SetPower(true))
		c.logger.Info("system powered on")
		return c.hw(ctx, "power-on tone", c.bz.PlayTone(ctx, buzzer.PowerOnNote))
	}

	c.logger.Info("system powered off", zap.Stringer("from", c.state))
	c.state = logic.StateOff
	c.lidOpened = false
	return c.reset(ctx)
}

func (c *Controller) selectMode(ctx context.Context) error {
	c.state = logic.StateModeSelect
	c.mode = c.mode.Toggle()
	c.led("mode1", c.out.SetMode1(c.mode == logic.ModeNormal))
	c.led("mode2", c.out.SetMode2(c.mode == logic.ModeDelicate))
	c.logger.Info("selected mode", zap.Stringer("mode", c.mode))

	if err := c.hw(ctx, "mode tone", c.bz.PlayTone(ctx, buzzer.ModeSelectNote)); err != nil {
		return err
	}
	if err := c.show(ctx, c.mode.Glyph()); err != nil {
		return err
	}
	c.state = logic.StateIdle
	return nil
}

func (c *Controller) start(ctx context.Context) error {
	c.state = logic.StateParameterCheck
	ok, err := c.checkParameters(ctx)
	if err != nil {
		return err
	}
	if !ok {
		c.counts.ChecksFailed++
		c.state = logic.StateIdle
		return nil
	}
	c.state = logic.StateRunning
	c.counts.CyclesStarted++
	return c.washCycle(ctx)
}

func (c *Controller) checkParameters(ctx context.Context) (bool, error) {
	snap, err := c.ReadSensors()
	fault, ok := logic.FaultSensor, false
	if err != nil {
		c.logger.Warn("sensor read failed", zap.Error(err))
	} else {
		c.logger.Info("current parameters",
			zap.Float32("temperature_c", snap.TemperatureC),
			zap.Float32("light_pct", snap.LightPct),
			zap.Float32("pressure_pct", snap.PressurePct),
			zap.Stringer("mode", c.mode))
		fault, ok = logic.CheckParameters(snap, c.mode)
	}

	if ok {
		c.led("warning", c.out.SetWarning(false))
		c.logger.Info("parameter check passed")
		return true, nil
	}

	c.logger.Warn("parameter check failed", zap.String("reason", fault.Reason))
	if err := c.hw(ctx, "warning tone", c.bz.PlayWarning(ctx)); err != nil {
		return false, err
	}
	c.led("warning", c.out.SetWarning(true))
	return false, c.show(ctx, fault.Glyph)
}

func (c *Controller) washCycle(ctx context.Context) error {
	seconds := c.mode.CycleSeconds()
	c.logger.Info("starting wash cycle", zap.Stringer("mode", c.mode), zap.Int("seconds", seconds))

	if err := c.hw(ctx, "start tune", c.bz.PlaySequence(ctx, buzzer.StartTune)); err != nil {
		return err
	}
	c.led("running", c.out.SetRunning(true))

	for remaining := seconds; remaining >= 0; remaining-- {
		if err := c.countStep(ctx, remaining); err != nil {
			return err
		}
	}
	return c.complete(ctx)
}

// countStep shows remaining and holds it for one CountInterval with the lid
// closed. Opening the lid part way through restarts the step once it closes.
func (c *Controller) countStep(ctx context.Context, remaining int) error {
	for {
		if err := c.waitLidClosed(ctx); err != nil {
			return err
		}
		started := c.clock.Now()
		if err := c.show(ctx, logic.DigitGlyph(remaining)); err != nil {
			return err
		}
		interrupted, err := c.holdStep(ctx, started)
		if err != nil {
			return err
		}
		if !interrupted {
			return nil
		}
	}
}

// holdStep sleeps out the rest of the step in PausePoll slices and reports
// whether the lid opened with time still remaining.
func (c *Controller) holdStep(ctx context.Context, started time.Time) (bool, error) {
	for {
		left := CountInterval - c.clock.Now().Sub(started)
		if left <= 0 {
			return false, nil
		}
		if left > PausePoll {
			left = PausePoll
		}
		if err := c.clock.Sleep(ctx, left); err != nil {
			return false, err
		}
		if c.clock.Now().Sub(started) >= CountInterval {
			return false, nil
		}
		if c.lidOpen() {
			return true, nil
		}
	}
}

func (c *Controller) waitLidClosed(ctx context.Context) error {
	if !c.lidOpen() {
		return nil
	}
	if err := c.pause(ctx); err != nil {
		return err
	}
	for {
		if err := c.clock.Sleep(ctx, PausePoll); err != nil {
			return err
		}
		if !c.lidOpen() {
			break
		}
	}
	c.resume()
	return nil
}

func (c *Controller) pause(ctx context.Context) error {
	c.state = logic.StatePaused
	c.lidOpened = true
	c.counts.Pauses++
	c.logger.Warn("paused: lid opened")

	c.led("running", c.out.SetRunning(false))
	c.led("warning", c.out.SetWarning(true))
	if err := c.show(ctx, logic.StatePaused.Glyph(c.mode)); err != nil {
		return err
	}
	return c.hw(ctx, "warning tone", c.bz.PlayWarning(ctx))
}

func (c *Controller) resume() {
	c.state = logic.StateRunning
	c.lidOpened = false
	c.led("running", c.out.SetRunning(true))
	c.led("warning", c.out.SetWarning(false))
	c.logger.Info("resumed: lid closed")
}

func (c *Controller) complete(ctx context.Context) error {
	c.state = logic.StateComplete
	c.counts.CyclesCompleted++
	c.logger.Info("wash cycle complete", zap.Stringer("mode", c.mode))

	if err := c.hw(ctx, "finish tune", c.bz.PlaySequence(ctx, buzzer.FinishTune)); err != nil {
		return err
	}
	if err := c.clock.Sleep(ctx, CompleteSettle); err != nil {
		return err
	}
	if err := c.reset(ctx); err != nil {
		return err
	}
	c.state = logic.StateIdle
	c.led("power", c.out.SetPower(true))
	return nil
}

// lidOpen reads the light level. A failed read counts as an open lid.
func (c *Controller) lidOpen() bool {
	light, err := c.sensors.Light()
	if err != nil {
		c.logger.Warn("light read failed, treating lid as open", zap.Error(err))
		return true
	}
	return logic.LidOpen(light)
}

// reset turns every indicator off, blanks the display and forgets the mode.
func (c *Controller) reset(ctx context.Context) error {
	c.mode = logic.ModeNone
	c.led("power", c.out.SetPower(false))
	c.led("mode1", c.out.SetMode1(false))
	c.led("mode2", c.out.SetMode2(false))
	c.led("running", c.out.SetRunning(false))
	c.led("warning", c.out.SetWarning(false))
	c.shown = 0
	return c.hw(ctx, "clear display", c.out.Clear(ctx))
}

// refreshDisplay shows the at-rest glyph of the current state when the
// display is not already showing it.
func (c *Controller) refreshDisplay(ctx context.Context) error {
	g := c.state.Glyph(c.mode)
	if g == 0 || g == c.shown {
		return nil
	}
	return c.show(ctx, g)
}

func (c *Controller) show(ctx context.Context, glyph rune) error {
	c.shown = glyph
	return c.hw(ctx, "show glyph", c.out.Show(ctx, glyph))
}

func (c *Controller) led(name string, err error) {
	if err != nil {
		c.logger.Warn("led write failed", zap.String("led", name), zap.Error(err))
	}
}

// hw logs a hardware error and swallows it. The context error is returned
// instead when ctx is done.
func (c *Controller) hw(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	c.logger.Warn("hardware error", zap.String("op", op), zap.Error(err))
	return nil
}
