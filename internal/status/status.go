// Package status formats the panel status block and emits it periodically
// to the status console.
package status

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sweeney/washer-panel/internal/logic"
)

// Snapshot is a point-in-time view of the panel.
type Snapshot struct {
	State     logic.State
	Mode      logic.Mode
	Sensors   logic.Snapshot
	SensorErr error
	// Buttons is set only when the raw levels were sampled.
	Buttons   *logic.ButtonLevels
	Counts    logic.Counts
	StartTime time.Time
	Now       time.Time
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// FormatText returns the console status block.
func FormatText(snap Snapshot) string {
	var b strings.Builder
	b.WriteString("\n=== Washing Machine Status ===\n")
	fmt.Fprintf(&b, "System State: %s\n", snap.State)
	if snap.State != logic.StateOff {
		fmt.Fprintf(&b, "Current Mode: %s\n", snap.Mode)
		if snap.SensorErr != nil {
			fmt.Fprintf(&b, "Sensors: %v\n", snap.SensorErr)
		} else {
			fmt.Fprintf(&b, "Temperature: %.1f°C\n", snap.Sensors.TemperatureC)
			fmt.Fprintf(&b, "Light Level: %.1f%%\n", snap.Sensors.LightPct)
			fmt.Fprintf(&b, "Pressure: %.1f%%\n", snap.Sensors.PressurePct)
		}
		fmt.Fprintf(&b, "Cycles: %d completed, %d paused, %d refused\n",
			snap.Counts.CyclesCompleted, snap.Counts.Pauses, snap.Counts.ChecksFailed)
	}
	b.WriteString("=============================\n")
	return b.String()
}

// Reporter writes a status block on the first of every N loop ticks while the
// panel is on.
// Blocks that fail to write are kept and replayed, oldest first, on the next
// report. It is used from the control loop only.
type Reporter struct {
	w       io.Writer
	every   int
	ticks   int
	pending *backlog
}

// NewReporter creates a Reporter. every <= 0 disables reporting.
func NewReporter(w io.Writer, every int) *Reporter {
	return &Reporter{w: w, every: every, pending: newBacklog(BacklogSize)}
}

// Tick counts one loop iteration. Ticks while the panel is off are not
// counted. capture is called only when a block is due.
func (r *Reporter) Tick(on bool, capture func() Snapshot) error {
	if !on || r.every <= 0 {
		return nil
	}
	due := r.ticks%r.every == 0
	r.ticks++
	if !due {
		return nil
	}
	blocks := append(r.pending.drainAll(), FormatText(capture()))
	for i, b := range blocks {
		if _, err := io.WriteString(r.w, b); err != nil {
			for _, rest := range blocks[i:] {
				r.pending.push(rest)
			}
			return fmt.Errorf("write status (%d pending): %w", r.pending.len(), err)
		}
	}
	return nil
}

// Pending returns how many blocks await replay.
func (r *Reporter) Pending() int {
	return r.pending.len()
}

// Dropped returns how many blocks were lost to a full backlog.
func (r *Reporter) Dropped() int {
	return r.pending.dropped
}
