package pipeline

import "time"

// Stage describes a high-level generation phase.
type Stage string

const (
	// StageLoad reads the context directory, configuration and metadata.
	StageLoad Stage = "load"
	// StageExtract builds the code info and registers every type.
	StageExtract Stage = "extract"
	// StageResolve attaches owning classes to scoped types.
	StageResolve Stage = "resolve"
	// StageEmit renders and writes the generated files.
	StageEmit Stage = "emit"
	// StageCopy copies the native sources next to the generated files.
	StageCopy Stage = "copy"
	// StagePatch patches the copied header.
	StagePatch Stage = "patch"
	// StageSnapshot writes the optional IR snapshot.
	StageSnapshot Stage = "snapshot"
)

// Stages lists every stage in run order.
var Stages = []Stage{StageLoad, StageExtract, StageResolve, StageEmit, StageCopy, StagePatch, StageSnapshot}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the artifact is waiting to be written.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for an artifact (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
