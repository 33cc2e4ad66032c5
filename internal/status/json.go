package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string       `json:"state"`
	Mode          string       `json:"mode"`
	Sensors       *SensorsJSON `json:"sensors,omitempty"`
	SensorError   string       `json:"sensor_error,omitempty"`
	Buttons       *ButtonsJSON `json:"buttons,omitempty"`
	Counts        CountsJSON   `json:"counts"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
}

// SensorsJSON is the JSON representation of calibrated readings.
type SensorsJSON struct {
	TemperatureC float32 `json:"temperature_c"`
	LightPct     float32 `json:"light_pct"`
	PressurePct  float32 `json:"pressure_pct"`
	LidOpen      bool    `json:"lid_open"`
}

// ButtonsJSON is the JSON representation of raw button levels.
type ButtonsJSON struct {
	Power bool `json:"power"`
	Mode  bool `json:"mode"`
	Start bool `json:"start"`
}

// CountsJSON is the JSON representation of activity counters.
type CountsJSON struct {
	PowerOn         int `json:"power_on"`
	ChecksFailed    int `json:"checks_failed"`
	CyclesStarted   int `json:"cycles_started"`
	CyclesCompleted int `json:"cycles_completed"`
	Pauses          int `json:"pauses"`
}

// FormatJSON returns the JSON status printed by -print-state.
func FormatJSON(snap Snapshot) []byte {
	inner := StatusInner{
		State:         snap.State.String(),
		Mode:          snap.Mode.String(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			PowerOn:         snap.Counts.PowerOn,
			ChecksFailed:    snap.Counts.ChecksFailed,
			CyclesStarted:   snap.Counts.CyclesStarted,
			CyclesCompleted: snap.Counts.CyclesCompleted,
			Pauses:          snap.Counts.Pauses,
		},
	}
	if snap.SensorErr != nil {
		inner.SensorError = snap.SensorErr.Error()
	} else {
		inner.Sensors = &SensorsJSON{
			TemperatureC: snap.Sensors.TemperatureC,
			LightPct:     snap.Sensors.LightPct,
			PressurePct:  snap.Sensors.PressurePct,
			LidOpen:      snap.Sensors.LidOpen(),
		}
	}
	if snap.Buttons != nil {
		inner.Buttons = &ButtonsJSON{
			Power: snap.Buttons.Power,
			Mode:  snap.Buttons.Mode,
			Start: snap.Buttons.Start,
		}
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
