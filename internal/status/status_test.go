package status

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/washer-panel/internal/logic"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func runningSnapshot() Snapshot {
	return Snapshot{
		State:     logic.StateIdle,
		Mode:      logic.ModeNormal,
		Sensors:   logic.Snapshot{TemperatureC: 25, LightPct: 10, PressurePct: 30.04},
		Counts:    logic.Counts{PowerOn: 1, CyclesCompleted: 2, Pauses: 1, ChecksFailed: 3},
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}
}

func TestSnapshotUptime(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestFormatTextOff(t *testing.T) {
	got := FormatText(Snapshot{State: logic.StateOff})
	want := "\n=== Washing Machine Status ===\n" +
		"System State: OFF\n" +
		"=============================\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatTextOn(t *testing.T) {
	got := FormatText(runningSnapshot())
	want := "\n=== Washing Machine Status ===\n" +
		"System State: IDLE\n" +
		"Current Mode: Normal\n" +
		"Temperature: 25.0°C\n" +
		"Light Level: 10.0%\n" +
		"Pressure: 30.0%\n" +
		"Cycles: 2 completed, 1 paused, 3 refused\n" +
		"=============================\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatTextSensorError(t *testing.T) {
	snap := runningSnapshot()
	snap.State = logic.StateParameterCheck
	snap.SensorErr = errors.New("sensor: sample is stale")

	got := FormatText(snap)
	if !strings.Contains(got, "System State: PARAMETER CHECK\n") {
		t.Errorf("missing state line: %q", got)
	}
	if !strings.Contains(got, "Sensors: sensor: sample is stale\n") {
		t.Errorf("missing sensor error: %q", got)
	}
	if strings.Contains(got, "Temperature:") {
		t.Errorf("readings printed despite error: %q", got)
	}
}

func TestReporterEvery(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, 20)
	captures := 0
	capture := func() Snapshot {
		captures++
		return runningSnapshot()
	}

	// The first on tick reports, then every 20th after it.
	for i := 0; i < 20; i++ {
		if err := r.Tick(true, capture); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if captures != 1 {
		t.Fatalf("captures after 20 ticks: got %d, want 1", captures)
	}
	if !strings.Contains(buf.String(), "=== Washing Machine Status ===") {
		t.Errorf("missing status block: %q", buf.String())
	}

	if err := r.Tick(true, capture); err != nil {
		t.Fatal(err)
	}
	if captures != 2 {
		t.Errorf("captures on tick 21: got %d, want 2", captures)
	}
}

func TestReporterSkipsOffTicks(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, 3)
	blocks := func() int { return strings.Count(buf.String(), "=== Washing Machine Status ===") }
	capture := func() Snapshot { return runningSnapshot() }

	r.Tick(false, capture)
	if blocks() != 0 {
		t.Fatalf("reported while off: %q", buf.String())
	}

	// Off ticks are not counted toward the interval.
	for _, on := range []bool{true, false, false, true, false, true} {
		r.Tick(on, capture)
	}
	if blocks() != 1 {
		t.Fatalf("blocks after 3 on ticks: got %d, want 1", blocks())
	}

	r.Tick(true, capture)
	if blocks() != 2 {
		t.Errorf("blocks on fourth on tick: got %d, want 2", blocks())
	}
}

func TestReporterDisabled(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, 0)
	for i := 0; i < 100; i++ {
		r.Tick(true, func() Snapshot { return runningSnapshot() })
	}
	if buf.Len() != 0 {
		t.Errorf("disabled reporter wrote %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("port closed") }

func TestReporterWriteError(t *testing.T) {
	r := NewReporter(failingWriter{}, 1)

	err := r.Tick(true, func() Snapshot { return runningSnapshot() })
	if err == nil || !strings.Contains(err.Error(), "port closed") {
		t.Errorf("expected write error, got %v", err)
	}
}

func TestFormatJSON(t *testing.T) {
	snap := runningSnapshot()
	snap.Buttons = &logic.ButtonLevels{Mode: true}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.State != "IDLE" {
		t.Errorf("State: got %q, want IDLE", parsed.Status.State)
	}
	if parsed.Status.Mode != "Normal" {
		t.Errorf("Mode: got %q, want Normal", parsed.Status.Mode)
	}
	if parsed.Status.Sensors == nil {
		t.Fatal("expected sensors")
	}
	if parsed.Status.Sensors.TemperatureC != 25 {
		t.Errorf("TemperatureC: got %v, want 25", parsed.Status.Sensors.TemperatureC)
	}
	if parsed.Status.Sensors.LidOpen {
		t.Error("expected lid closed")
	}
	if parsed.Status.Buttons == nil || !parsed.Status.Buttons.Mode || parsed.Status.Buttons.Power {
		t.Errorf("Buttons: got %+v", parsed.Status.Buttons)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if parsed.Status.Counts.CyclesCompleted != 2 {
		t.Errorf("Counts.CyclesCompleted: got %d, want 2", parsed.Status.Counts.CyclesCompleted)
	}
	if parsed.Status.SensorError != "" {
		t.Errorf("unexpected SensorError %q", parsed.Status.SensorError)
	}
}

func TestFormatJSONSensorError(t *testing.T) {
	snap := runningSnapshot()
	snap.SensorErr = errors.New("sensor: no sample received")

	var raw map[string]interface{}
	if err := json.Unmarshal(FormatJSON(snap), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	status := raw["status"].(map[string]interface{})
	if _, exists := status["sensors"]; exists {
		t.Error("sensors should be omitted on error")
	}
	if _, exists := status["buttons"]; exists {
		t.Error("buttons should be omitted when not sampled")
	}
	if status["sensor_error"] != "sensor: no sample received" {
		t.Errorf("sensor_error: got %v", status["sensor_error"])
	}
}

func TestOpenSinkStdout(t *testing.T) {
	for _, port := range []string{"", Stdout} {
		w, err := OpenSink(port, 115200)
		if err != nil {
			t.Fatalf("%q: %v", port, err)
		}
		if err := w.Close(); err != nil {
			t.Errorf("%q: close: %v", port, err)
		}
	}
}

func TestOpenSinkMissingDevice(t *testing.T) {
	if _, err := OpenSink("/dev/does-not-exist-washer", 115200); err == nil {
		t.Error("expected error for missing device")
	}
}

// flakyWriter fails the first n writes.
type flakyWriter struct {
	fails int
	buf   bytes.Buffer
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	if w.fails > 0 {
		w.fails--
		return 0, errors.New("console unplugged")
	}
	return w.buf.Write(p)
}

func TestReporterReplaysFailedBlocks(t *testing.T) {
	w := &flakyWriter{fails: 2}
	r := NewReporter(w, 1)
	n := 0
	capture := func() Snapshot {
		n++
		snap := runningSnapshot()
		snap.Counts.CyclesCompleted = n
		return snap
	}

	if err := r.Tick(true, capture); err == nil {
		t.Fatal("expected first write to fail")
	}
	if err := r.Tick(true, capture); err == nil {
		t.Fatal("expected second write to fail")
	}
	if r.Pending() != 2 {
		t.Fatalf("Pending: got %d, want 2", r.Pending())
	}

	if err := r.Tick(true, capture); err != nil {
		t.Fatalf("third write: %v", err)
	}
	if r.Pending() != 0 {
		t.Errorf("Pending after replay: got %d, want 0", r.Pending())
	}

	out := w.buf.String()
	first := strings.Index(out, "Cycles: 1 completed")
	second := strings.Index(out, "Cycles: 2 completed")
	third := strings.Index(out, "Cycles: 3 completed")
	if first < 0 || second < first || third < second {
		t.Errorf("blocks out of order:\n%s", out)
	}
}

func TestReporterBacklogDropsOldest(t *testing.T) {
	r := NewReporter(failingWriter{}, 1)
	for i := 0; i < BacklogSize+4; i++ {
		r.Tick(true, func() Snapshot { return runningSnapshot() })
	}
	if r.Pending() != BacklogSize {
		t.Errorf("Pending: got %d, want %d", r.Pending(), BacklogSize)
	}
	if r.Dropped() != 4 {
		t.Errorf("Dropped: got %d, want 4", r.Dropped())
	}
}
