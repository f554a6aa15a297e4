package pipeline

import (
	"context"
	"fmt"
)

// Stage is a discrete unit of work in the build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StageResolvePaths     StageName = "resolve_paths"
	StageSelectSources    StageName = "select_sources"
	StageCompileNative    StageName = "compile_native"
	StageGenerateBindings StageName = "generate_bindings"
	StageWriteOutput      StageName = "write_output"
)

// StageErrorKind classifies the outcome of a failed stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"
	StageErrorCanceled StageErrorKind = "canceled"
)

// StageError ties a failure to the stage that produced it. The classified cause
// stays reachable through errors.As.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// NewFatalStageError creates a new fatal stage error.
func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
	StageResultSkipped  StageResult = "skipped"
)

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Plan is a fluent builder for ordered stage definitions.
type Plan struct{ Defs []StageDef }

// NewPlan creates an empty plan.
func NewPlan() *Plan { return &Plan{Defs: make([]StageDef, 0, 5)} }

// Add appends a stage unconditionally.
func (p *Plan) Add(name StageName, fn Stage) *Plan {
	p.Defs = append(p.Defs, StageDef{Name: name, Fn: fn})
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Plan) AddIf(cond bool, name StageName, fn Stage) *Plan {
	if cond {
		p.Add(name, fn)
	}
	return p
}

// Build returns a copy of the stage definitions.
func (p *Plan) Build() []StageDef {
	out := make([]StageDef, len(p.Defs))
	copy(out, p.Defs)
	return out
}

// Names lists the planned stages in order.
func (p *Plan) Names() []StageName {
	out := make([]StageName, len(p.Defs))
	for i, d := range p.Defs {
		out[i] = d.Name
	}
	return out
}
