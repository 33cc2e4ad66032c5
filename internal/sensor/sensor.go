// Package sensor turns raw normalized ADC samples (0.0-1.0) into the
// temperature, light and pressure readings the panel works with.
package sensor

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/sweeney/washer-panel/internal/logic"
)

var (
	// ErrNoSample is returned before the first sample has arrived.
	ErrNoSample = errors.New("sensor: no sample received")
	// ErrStale is returned when the latest sample is too old to trust.
	ErrStale = errors.New("sensor: sample is stale")
	// ErrInvalid is returned for NaN or infinite raw values.
	ErrInvalid = errors.New("sensor: invalid raw value")
)

// ReferenceVoltage is the ADC reference of the sensor board.
const ReferenceVoltage float32 = 3.3

// Raw is one sample of the three analog channels, each normalized to 0.0-1.0.
type Raw struct {
	Temperature float32
	Light       float32
	Pressure    float32
}

// RawSource supplies raw samples.
type RawSource interface {
	Raw() (Raw, error)
}

// TemperatureC converts a raw thermistor-amplifier sample to degrees Celsius
// (10 mV per degree).
func TemperatureC(raw float32) float32 {
	return raw * ReferenceVoltage / 0.01
}

// LightPct converts a raw LDR sample to percent.
func LightPct(raw float32) float32 {
	return raw * 100
}

// PressurePct converts a raw FSR sample to percent of the 2.74 V full-load level.
func PressurePct(raw float32) float32 {
	return raw * 100 * ReferenceVoltage / 2.74
}

// Calibrated reads a RawSource and returns calibrated values.
// Values outside the physical range are passed through unchanged.
type Calibrated struct {
	src RawSource
}

// NewCalibrated wraps src.
func NewCalibrated(src RawSource) *Calibrated {
	return &Calibrated{src: src}
}

// Temperature samples the temperature channel in °C.
func (c *Calibrated) Temperature() (float32, error) {
	return c.channel("temperature", func(r Raw) float32 { return r.Temperature }, TemperatureC)
}

// Light samples the light channel in percent.
func (c *Calibrated) Light() (float32, error) {
	return c.channel("light", func(r Raw) float32 { return r.Light }, LightPct)
}

// Pressure samples the pressure channel in percent.
func (c *Calibrated) Pressure() (float32, error) {
	return c.channel("pressure", func(r Raw) float32 { return r.Pressure }, PressurePct)
}

// Snapshot samples all three channels from a single raw sample.
func (c *Calibrated) Snapshot() (logic.Snapshot, error) {
	r, err := c.src.Raw()
	if err != nil {
		return logic.Snapshot{}, err
	}
	for _, v := range []float32{r.Temperature, r.Light, r.Pressure} {
		if err := checkRaw(v); err != nil {
			return logic.Snapshot{}, err
		}
	}
	return logic.Snapshot{
		TemperatureC: TemperatureC(r.Temperature),
		LightPct:     LightPct(r.Light),
		PressurePct:  PressurePct(r.Pressure),
	}, nil
}

func (c *Calibrated) channel(name string, pick func(Raw) float32, convert func(float32) float32) (float32, error) {
	r, err := c.src.Raw()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	v := pick(r)
	if err := checkRaw(v); err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	return convert(v), nil
}

func checkRaw(v float32) error {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return ErrInvalid
	}
	return nil
}
