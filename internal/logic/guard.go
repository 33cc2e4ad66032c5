package logic

// Limits checked before a wash cycle may start.
const (
	MinTemperatureC float32 = 20.0
	MaxPressurePct  float32 = 60.0
	LidOpenLightPct float32 = 80.0
)

// Fault is a reason the panel refuses to start, with the glyph that shows it.
type Fault struct {
	Glyph  rune
	Reason string
}

func (f Fault) String() string {
	return f.Reason
}

var (
	FaultSensor         = Fault{Glyph: 'F', Reason: "sensor fault"}
	FaultTemperatureLow = Fault{Glyph: 'L', Reason: "temperature too low"}
	FaultOverweight     = Fault{Glyph: 'H', Reason: "overweight"}
	FaultLidOpen        = Fault{Glyph: 'O', Reason: "lid open"}
	FaultNoMode         = Fault{Glyph: 'C', Reason: "no mode chosen"}
)

// LidOpen reports whether a light reading means the lid is open.
func LidOpen(lightPct float32) bool {
	return lightPct > LidOpenLightPct
}

// CheckParameters validates the readings and mode before a cycle.
// Rules are checked in a fixed order and the first failure is returned;
// ok is true when every rule passes. Readings are taken as-is, out-of-range
// values included.
func CheckParameters(s Snapshot, mode Mode) (fault Fault, ok bool) {
	switch {
	case s.TemperatureC < MinTemperatureC:
		return FaultTemperatureLow, false
	case s.PressurePct > MaxPressurePct:
		return FaultOverweight, false
	case LidOpen(s.LightPct):
		return FaultLidOpen, false
	case mode == ModeNone:
		return FaultNoMode, false
	}
	return Fault{}, true
}
