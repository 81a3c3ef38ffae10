// Package pipeline describes the per-file validation stages and the progress
// events emitted while files move through them.
package pipeline

import (
	"sync"
	"time"
)

// Stage describes one phase of validating a file.
type Stage string

const (
	// StageConfig resolves the configuration for the file.
	StageConfig Stage = "config"
	// StageAugment prepares the text handed to the validator.
	StageAugment Stage = "augment"
	// StageValidate runs the external validator.
	StageValidate Stage = "validate"
	// StageParse maps validator output back to diagnostics.
	StageParse Stage = "parse"
)

// Stages lists the per-file stages in execution order.
var Stages = []Stage{StageConfig, StageAugment, StageValidate, StageParse}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is currently in a stage.
	StatusWorking Status = "working"
	// StatusCached indicates the result came from the cache.
	StatusCached Status = "cached"
	// StatusSkipped indicates the file was excluded by configuration.
	StatusSkipped Status = "skipped"
	// StatusDone indicates the file passed.
	StatusDone Status = "done"
	// StatusError indicates the file has errors or could not be validated.
	StatusError Status = "error"
)

// Terminal reports whether no further events follow for the file.
func (s Status) Terminal() bool {
	switch s {
	case StatusCached, StatusSkipped, StatusDone, StatusError:
		return true
	}
	return false
}

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Timings holds stage durations. The zero value is ready to use and safe for
// concurrent Add calls.
type Timings struct {
	mu     sync.Mutex
	stages map[Stage]time.Duration
}

// Add accumulates dur for stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] += dur
	t.mu.Unlock()
}

// Has reports whether a duration for stage is recorded.
func (t *Timings) Has(stage Stage) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t *Timings) Duration(stage Stage) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stages[stage]
}

// Merge adds every duration of other into t.
func (t *Timings) Merge(other *Timings) {
	if t == nil || other == nil || t == other {
		return
	}
	other.mu.Lock()
	snapshot := make(map[Stage]time.Duration, len(other.stages))
	for k, v := range other.stages {
		snapshot[k] = v
	}
	other.mu.Unlock()
	for k, v := range snapshot {
		t.Add(k, v)
	}
}
