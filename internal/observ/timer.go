// Package observ collects wall-clock timings of pipeline phases.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"text/tabwriter"
	"time"
)

// Phase is one timed pipeline phase. Dur stays zero until the phase ends.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer records phases in the order they begin. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer { return &Timer{} }

func (t *Timer) add(p Phase) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, p)
	return len(t.phases) - 1
}

// Begin opens a phase; pass the returned handle to End.
func (t *Timer) Begin(name string) int {
	return t.add(Phase{Name: name, Start: time.Now()})
}

// End closes the phase opened by Begin. Unknown handles are ignored.
func (t *Timer) End(handle int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if handle < 0 || handle >= len(t.phases) {
		return
	}
	t.phases[handle].Dur = time.Since(t.phases[handle].Start)
	t.phases[handle].Note = note
}

// Record adds a phase measured elsewhere.
func (t *Timer) Record(name string, dur time.Duration, note string) {
	t.add(Phase{Name: name, Start: time.Now().Add(-dur), Dur: dur, Note: note})
}

// PhaseReport is the serializable form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report lists every phase and their total.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the recorded phases.
func (t *Timer) Report() Report {
	t.mu.Lock()
	phases := append([]Phase(nil), t.phases...)
	t.mu.Unlock()

	var r Report
	var total time.Duration
	for _, p := range phases {
		total += p.Dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	for _, p := range r.Phases {
		fmt.Fprintf(tw, "  %s\t%.2f ms\t", p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(tw, " %s", p.Note)
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintf(tw, "  total\t%.2f ms\t\n", r.TotalMS)
	_ = tw.Flush()
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
