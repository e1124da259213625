package buildpipeline

import "time"

// Stage is a pipeline pass.
type Stage string

const (
	StageOrder    Stage = "order"    // dependency ordering
	StageAssemble Stage = "assemble" // command assembly
	StageExecute  Stage = "execute"  // running the compiler
)

// Status is the state of a module within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped" // dry run
	StatusError   Status = "error"
)

// Event reports progress of one module, or of the whole pipeline when Module
// is empty. Elapsed is set on StatusDone for executed modules.
type Event struct {
	Module  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Execute calls it from several
// goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

type stageTiming struct {
	stage Stage
	dur   time.Duration
}

// Timings records stage durations in the order they were first set.
type Timings struct {
	entries []stageTiming
}

func (t Timings) find(stage Stage) int {
	for i, e := range t.entries {
		if e.stage == stage {
			return i
		}
	}
	return -1
}

// Set records dur for stage, replacing an earlier value.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	if i := t.find(stage); i >= 0 {
		t.entries[i].dur = dur
		return
	}
	t.entries = append(t.entries, stageTiming{stage: stage, dur: dur})
}

// Has reports whether stage was recorded.
func (t Timings) Has(stage Stage) bool { return t.find(stage) >= 0 }

// Duration returns the recorded duration of stage, or zero.
func (t Timings) Duration(stage Stage) time.Duration {
	if i := t.find(stage); i >= 0 {
		return t.entries[i].dur
	}
	return 0
}

// Sum adds up the durations of stages; unrecorded stages count as zero.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, s := range stages {
		total += t.Duration(s)
	}
	return total
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
