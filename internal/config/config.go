// Package config loads the daemon configuration: hardware bindings, loop
// timing and logging.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/washer-panel/internal/gpio"
)

// Config represents the daemon configuration.
type Config struct {
	GPIO    GPIOConfig    `yaml:"gpio"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Console ConsoleConfig `yaml:"console"`
	Loop    LoopConfig    `yaml:"loop"`
	Log     LogConfig     `yaml:"log"`
}

// GPIOConfig contains the chip and line offsets (BCM numbering).
type GPIOConfig struct {
	Chip string `yaml:"chip"`
	// ActiveLow means the buttons pull their line low when pressed.
	ActiveLow bool `yaml:"active_low"`

	PowerButton int `yaml:"power_button"`
	ModeButton  int `yaml:"mode_button"`
	StartButton int `yaml:"start_button"`

	PowerLED   int `yaml:"power_led"`
	Mode1LED   int `yaml:"mode1_led"`
	Mode2LED   int `yaml:"mode2_led"`
	RunningLED int `yaml:"running_led"`
	WarningLED int `yaml:"warning_led"`

	// Segments lists the lines of segments a to g.
	Segments []int `yaml:"segments"`
	Buzzer   int   `yaml:"buzzer"`
}

// SensorConfig contains the ADC bridge serial port.
type SensorConfig struct {
	Port       string        `yaml:"port"`
	Baud       int           `yaml:"baud"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

// ConsoleConfig selects where status blocks are written.
type ConsoleConfig struct {
	Port string `yaml:"port"` // "stdout" or a serial device
	Baud int    `yaml:"baud"`
}

// LoopConfig contains control loop timing.
type LoopConfig struct {
	Poll        time.Duration `yaml:"poll"`
	Debounce    time.Duration `yaml:"debounce"`
	StatusEvery int           `yaml:"status_every"` // ticks between status blocks while on
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
	Output string `yaml:"output"` // stdout, stderr or a file path
}

// Default returns the configuration of the reference wiring.
func Default() *Config {
	return &Config{
		GPIO: GPIOConfig{
			Chip:        "gpiochip0",
			PowerButton: 17,
			ModeButton:  27,
			StartButton: 22,
			PowerLED:    5,
			Mode1LED:    6,
			Mode2LED:    13,
			RunningLED:  19,
			WarningLED:  26,
			Segments:    []int{16, 20, 21, 12, 25, 24, 23},
			Buzzer:      18,
		},
		Sensor: SensorConfig{
			Port:       "/dev/ttyACM0",
			Baud:       115200,
			StaleAfter: 2 * time.Second,
		},
		Console: ConsoleConfig{
			Port: "stdout",
			Baud: 115200,
		},
		Loop: LoopConfig{
			Poll:        50 * time.Millisecond,
			Debounce:    50 * time.Millisecond,
			StatusEvery: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// ensureDefaults fills zero values left by a partial file.
func (c *Config) ensureDefaults() {
	d := Default()
	if c.GPIO.Chip == "" {
		c.GPIO.Chip = d.GPIO.Chip
	}
	if len(c.GPIO.Segments) == 0 {
		c.GPIO.Segments = d.GPIO.Segments
	}
	if c.Sensor.Baud == 0 {
		c.Sensor.Baud = d.Sensor.Baud
	}
	if c.Sensor.StaleAfter == 0 {
		c.Sensor.StaleAfter = d.Sensor.StaleAfter
	}
	if c.Console.Port == "" {
		c.Console.Port = d.Console.Port
	}
	if c.Console.Baud == 0 {
		c.Console.Baud = d.Console.Baud
	}
	if c.Loop.Poll == 0 {
		c.Loop.Poll = d.Loop.Poll
	}
	if c.Loop.Debounce == 0 {
		c.Loop.Debounce = d.Loop.Debounce
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Log.Output == "" {
		c.Log.Output = d.Log.Output
	}
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var err error
	if len(c.GPIO.Segments) != 7 {
		err = multierr.Append(err, fmt.Errorf("gpio.segments: need 7 lines (a-g), got %d", len(c.GPIO.Segments)))
	}
	seen := make(map[int]string)
	for name, pin := range c.pins() {
		if pin < 0 {
			err = multierr.Append(err, fmt.Errorf("gpio.%s: negative line %d", name, pin))
			continue
		}
		if other, dup := seen[pin]; dup {
			err = multierr.Append(err, fmt.Errorf("gpio.%s: line %d already used by %s", name, pin, other))
			continue
		}
		seen[pin] = name
	}
	if c.Sensor.Port == "" {
		err = multierr.Append(err, errors.New("sensor.port: required"))
	}
	if c.Sensor.Baud <= 0 || c.Console.Baud <= 0 {
		err = multierr.Append(err, errors.New("baud rates must be positive"))
	}
	if c.Loop.Poll <= 0 {
		err = multierr.Append(err, fmt.Errorf("loop.poll: must be positive, got %v", c.Loop.Poll))
	}
	if c.Loop.Debounce < 0 {
		err = multierr.Append(err, fmt.Errorf("loop.debounce: negative %v", c.Loop.Debounce))
	}
	if c.Loop.StatusEvery < 0 {
		err = multierr.Append(err, fmt.Errorf("loop.status_every: negative %d", c.Loop.StatusEvery))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		err = multierr.Append(err, fmt.Errorf("log.format: want json or console, got %q", c.Log.Format))
	}
	return err
}

// pins names every configured line. Map order is random; Validate only
// uses it to detect clashes.
func (c *Config) pins() map[string]int {
	g := c.GPIO
	m := map[string]int{
		"power_button": g.PowerButton,
		"mode_button":  g.ModeButton,
		"start_button": g.StartButton,
		"power_led":    g.PowerLED,
		"mode1_led":    g.Mode1LED,
		"mode2_led":    g.Mode2LED,
		"running_led":  g.RunningLED,
		"warning_led":  g.WarningLED,
		"buzzer":       g.Buzzer,
	}
	for i, pin := range g.Segments {
		m[fmt.Sprintf("segments[%c]", 'a'+i)] = pin
	}
	return m
}

// ButtonPins returns the button line offsets.
func (c *Config) ButtonPins() gpio.ButtonPins {
	return gpio.ButtonPins{
		Power: c.GPIO.PowerButton,
		Mode:  c.GPIO.ModeButton,
		Start: c.GPIO.StartButton,
	}
}

// OutputPins returns the LED and segment line offsets. Validate first.
func (c *Config) OutputPins() gpio.OutputPins {
	var p gpio.OutputPins
	p.LEDs = [...]int{c.GPIO.PowerLED, c.GPIO.Mode1LED, c.GPIO.Mode2LED, c.GPIO.RunningLED, c.GPIO.WarningLED}
	copy(p.Segments[:], c.GPIO.Segments)
	return p
}
