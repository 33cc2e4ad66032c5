// Command washer-panel runs the washing-machine control panel: it polls the
// buttons, sequences the wash cycle and reports status on the console.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/washer-panel/internal/buzzer"
	"github.com/sweeney/washer-panel/internal/clock"
	"github.com/sweeney/washer-panel/internal/config"
	"github.com/sweeney/washer-panel/internal/display"
	"github.com/sweeney/washer-panel/internal/gpio"
	"github.com/sweeney/washer-panel/internal/logic"
	"github.com/sweeney/washer-panel/internal/panel"
	"github.com/sweeney/washer-panel/internal/sensor"
	"github.com/sweeney/washer-panel/internal/status"
)

func main() {
	configPath := flag.String("config", "/etc/washer-panel.yaml", "Path to the YAML config (defaults are used if missing)")
	printState := flag.Bool("print-state", false, "Print sensor and button state as JSON and exit")
	logLevel := flag.String("log-level", "", "Log level override (debug, info, warn, error)")

	flag.Parse()

	if err := run(*configPath, *printState, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, printState bool, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log, nil)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	buttons, err := gpio.NewButtonReader(cfg.GPIO.Chip, cfg.ButtonPins(), cfg.GPIO.ActiveLow)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer closeLogged(logger, "buttons", buttons)

	bridge := sensor.NewBridge(cfg.Sensor.Port, cfg.Sensor.Baud, cfg.Sensor.StaleAfter, logger)
	if err := bridge.Connect(); err != nil {
		return fmt.Errorf("init sensor bridge: %w", err)
	}
	defer closeLogged(logger, "sensor bridge", bridge)
	sensors := sensor.NewCalibrated(bridge)

	if printState {
		select {
		case <-bridge.Ready():
		case <-time.After(cfg.Sensor.StaleAfter):
		}
		return writeState(os.Stdout, buttons, sensors, time.Now())
	}

	outputs, err := gpio.NewOutputs(cfg.GPIO.Chip, cfg.OutputPins())
	if err != nil {
		return fmt.Errorf("init outputs: %w", err)
	}
	defer closeLogged(logger, "outputs", outputs)

	tone, err := gpio.NewToneLine(cfg.GPIO.Chip, cfg.GPIO.Buzzer, logger)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	defer closeLogged(logger, "buzzer", tone)

	sink, err := status.OpenSink(cfg.Console.Port, cfg.Console.Baud)
	if err != nil {
		return fmt.Errorf("init status console: %w", err)
	}
	defer closeLogged(logger, "status console", sink)

	clk := clock.Real{}
	ctrl := panel.New(sensors, display.NewPort(outputs, clk), buzzer.NewPlayer(tone, clk), clk, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Init(ctx); err != nil {
		return fmt.Errorf("init panel: %w", err)
	}

	logger.Info("started",
		zap.Duration("poll", cfg.Loop.Poll),
		zap.Duration("debounce", cfg.Loop.Debounce),
		zap.String("sensor_port", cfg.Sensor.Port),
		zap.String("console", cfg.Console.Port))

	ticker := time.NewTicker(cfg.Loop.Poll)
	defer ticker.Stop()

	reporter := status.NewReporter(sink, cfg.Loop.StatusEvery)
	return runLoop(ctx, buttons, ctrl, reporter, cfg.Loop.Poll, cfg.Loop.Debounce, time.Now, ticker.C, logger)
}

// runLoop polls the buttons on every tick and feeds debounced presses to the
// controller until ctx is done, then powers the panel down. Button history is
// dropped after a step that blocked for longer than one poll.
func runLoop(ctx context.Context, reader gpio.Reader, ctrl *panel.Controller, reporter *status.Reporter, poll, debounce time.Duration, now func() time.Time, tick <-chan time.Time, logger *zap.Logger) error {
	startTime := now()
	buttons := logic.NewButtons(debounce)

	capture := func() status.Snapshot {
		snap := status.Snapshot{
			State:     ctrl.State(),
			Mode:      ctrl.Mode(),
			Counts:    ctrl.Counts(),
			StartTime: startTime,
			Now:       now(),
		}
		snap.Sensors, snap.SensorErr = ctrl.ReadSensors()
		return snap
	}

	for {
		select {
		case <-ctx.Done():
			return shutdown(ctrl, logger, ctx.Err())

		case <-tick:
			levels, err := reader.Read()
			if err != nil {
				logger.Warn("gpio read error", zap.Error(err))
				continue
			}

			sampled := now()
			events := buttons.Process(levels, sampled)
			if events.Any() {
				logger.Debug("buttons",
					zap.Bool("power", events.Power),
					zap.Bool("mode", events.Mode),
					zap.Bool("start", events.Start))
			}

			if err := ctrl.Step(ctx, events); err != nil {
				// Only a done context stops a step.
				return shutdown(ctrl, logger, err)
			}
			if blocked := now().Sub(sampled); blocked > poll {
				logger.Debug("re-baselining buttons",
					zap.Duration("blocked", blocked),
					zap.Bool("dropped_press", buttons.Pending()))
				buttons.Reset()
			}

			if err := reporter.Tick(ctrl.State() != logic.StateOff, capture); err != nil {
				logger.Warn("status report failed",
					zap.Int("pending", reporter.Pending()),
					zap.Int("dropped", reporter.Dropped()),
					zap.Error(err))
			}
		}
	}
}

func shutdown(ctrl *panel.Controller, logger *zap.Logger, reason error) error {
	logger.Info("shutting down",
		zap.Stringer("state", ctrl.State()),
		zap.NamedError("reason", reason))
	if err := ctrl.Shutdown(context.Background()); err != nil {
		logger.Warn("shutdown outputs", zap.Error(err))
	}
	return nil
}

type snapshotter interface {
	Snapshot() (logic.Snapshot, error)
}

// writeState prints one JSON status of the raw buttons and the sensors.
func writeState(w io.Writer, reader gpio.Reader, sensors snapshotter, now time.Time) error {
	levels, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read buttons: %w", err)
	}
	snap := status.Snapshot{
		State:     logic.StateOff,
		Mode:      logic.ModeNone,
		Buttons:   &levels,
		StartTime: now,
		Now:       now,
	}
	snap.Sensors, snap.SensorErr = sensors.Snapshot()
	_, err = fmt.Fprintf(w, "%s\n", status.FormatJSON(snap))
	return err
}

func closeLogged(logger *zap.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", zap.String("resource", name), zap.Error(err))
	}
}
