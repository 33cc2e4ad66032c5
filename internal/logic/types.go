// Package logic contains the pure control rules of the washer panel:
// operating states, wash modes, button debouncing and the start guard.
// This package has NO external dependencies (no GPIO, ADC, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

// State is the operating state of the panel.
type State int

const (
	StateOff State = iota
	StateIdle
	StateModeSelect
	StateParameterCheck
	StateRunning
	StateComplete
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "OFF"
	case StateIdle:
		return "IDLE"
	case StateModeSelect:
		return "MODE SELECT"
	case StateParameterCheck:
		return "PARAMETER CHECK"
	case StateRunning:
		return "RUNNING"
	case StateComplete:
		return "COMPLETE"
	case StatePaused:
		return "PAUSED"
	}
	return "UNKNOWN"
}

// Glyph returns the display glyph shown while the panel sits in s,
// or 0 when the state leaves the display alone.
func (s State) Glyph(mode Mode) rune {
	switch s {
	case StateIdle:
		return 'I'
	case StateModeSelect:
		return mode.Glyph()
	case StateParameterCheck:
		return 'C'
	case StateComplete:
		return 'E'
	case StatePaused:
		return 'P'
	}
	return 0
}

// Mode is the selected wash program.
type Mode int

const (
	ModeNormal Mode = iota
	ModeDelicate
	ModeNone
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeDelicate:
		return "Delicate"
	}
	return "No Mode"
}

// Toggle returns the mode selected by one press of the mode button.
// ModeNone toggles like ModeDelicate, so the first press always picks Normal.
func (m Mode) Toggle() Mode {
	if m == ModeNormal {
		return ModeDelicate
	}
	return ModeNormal
}

// CycleSeconds is the countdown start for the mode's wash cycle.
// Normal runs 5 seconds and Delicate 8, the reverse of their labels on the
// front panel; the firmware has always shipped this way.
func (m Mode) CycleSeconds() int {
	switch m {
	case ModeNormal:
		return 5
	case ModeDelicate:
		return 8
	}
	return 0
}

// Glyph is the letter shown when the mode is selected.
func (m Mode) Glyph() rune {
	if m == ModeNormal {
		return 'N'
	}
	return 'D'
}

// Snapshot is one set of calibrated sensor readings.
type Snapshot struct {
	TemperatureC float32
	LightPct     float32
	PressurePct  float32
}

// LidOpen reports whether the light level says the lid is open.
func (s Snapshot) LidOpen() bool {
	return LidOpen(s.LightPct)
}

// ButtonLevels is one raw sample of the three button lines (true = asserted).
type ButtonLevels struct {
	Power bool
	Mode  bool
	Start bool
}

// ButtonEvents holds the debounced presses detected on one tick.
type ButtonEvents struct {
	Power bool
	Mode  bool
	Start bool
}

// Any reports whether any button fired.
func (e ButtonEvents) Any() bool {
	return e.Power || e.Mode || e.Start
}

// Counts tracks panel activity since the daemon started.
type Counts struct {
	PowerOn         int
	ChecksFailed    int
	CyclesStarted   int
	CyclesCompleted int
	Pauses          int
}

// DigitGlyph returns the display glyph for a countdown value 0-9.
func DigitGlyph(n int) rune {
	if n < 0 || n > 9 {
		return 0
	}
	return rune('0' + n)
}
