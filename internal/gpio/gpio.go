// Package gpio binds the panel to Linux GPIO lines: the three buttons as
// inputs, the LEDs and 7-segment display as outputs, and the buzzer line.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"github.com/sweeney/washer-panel/internal/display"
	"github.com/sweeney/washer-panel/internal/logic"
)

// Consumer is the label attached to every requested line.
const Consumer = "washer-panel"

// Reader reads the button lines.
type Reader interface {
	// Read returns the logical button levels (true = pressed).
	Read() (logic.ButtonLevels, error)

	// Close releases GPIO resources.
	Close() error
}

// ButtonPins are the line offsets of the three buttons.
type ButtonPins struct {
	Power int
	Mode  int
	Start int
}

// OutputPins are the line offsets of the LEDs and of segments a-g.
type OutputPins struct {
	LEDs     [display.NumLEDs]int
	Segments [7]int
}

// segmentValues expands segment bits into one line value per segment.
func segmentValues(bits uint8, vals []int) {
	for i := range vals {
		vals[i] = int(bits>>uint(i)) & 1
	}
}

func boolValue(on bool) int {
	if on {
		return 1
	}
	return 0
}
