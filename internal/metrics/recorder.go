package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for build, stage and compile metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|failed|canceled
	ObserveCompileUnitDuration(unit string, d time.Duration, success bool)
	SetCompileConcurrency(n int)
	SetEmittedDecls(kind string, n int)
	IncSkippedDecl(kind string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)             {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                     {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                     {}
func (NoopRecorder) IncBuildOutcome(string)                                 {}
func (NoopRecorder) ObserveCompileUnitDuration(string, time.Duration, bool) {}
func (NoopRecorder) SetCompileConcurrency(int)                              {}
func (NoopRecorder) SetEmittedDecls(string, int)                            {}
func (NoopRecorder) IncSkippedDecl(string)                                  {}
