//go:build !linux

package gpio

import (
	"errors"

	"go.uber.org/zap"

	"github.com/sweeney/washer-panel/internal/display"
	"github.com/sweeney/washer-panel/internal/logic"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// ButtonReader is not available on non-Linux platforms.
type ButtonReader struct{}

// NewButtonReader returns an error on non-Linux platforms.
func NewButtonReader(string, ButtonPins, bool) (*ButtonReader, error) {
	return nil, errUnsupported
}

func (r *ButtonReader) Read() (logic.ButtonLevels, error) { return logic.ButtonLevels{}, errUnsupported }
func (r *ButtonReader) Close() error                       { return nil }

// Outputs is not available on non-Linux platforms.
type Outputs struct{}

// NewOutputs returns an error on non-Linux platforms.
func NewOutputs(string, OutputPins) (*Outputs, error) {
	return nil, errUnsupported
}

func (o *Outputs) SetLED(display.LED, bool) error { return errUnsupported }
func (o *Outputs) WriteSegments(uint8) error      { return errUnsupported }
func (o *Outputs) Close() error                   { return nil }

// ToneLine is not available on non-Linux platforms.
type ToneLine struct{}

// NewToneLine returns an error on non-Linux platforms.
func NewToneLine(string, int, *zap.Logger) (*ToneLine, error) {
	return nil, errUnsupported
}

func (t *ToneLine) Start(int) error { return errUnsupported }
func (t *ToneLine) Stop() error     { return nil }
func (t *ToneLine) Close() error    { return nil }
