package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen"
	"git.home.luguber.info/inful/ayamsys/internal/metrics"
	"git.home.luguber.info/inful/ayamsys/internal/output"
	"git.home.luguber.info/inful/ayamsys/internal/version"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

const reportSchemaVersion = 1

// BuildReport captures what one invocation did and produced.
type BuildReport struct {
	SchemaVersion   int
	BuildID         string
	Start           time.Time
	End             time.Time
	Errors          []error // fatal errors causing build abortion (at most one today)
	StageOrder      []StageName
	StageDurations  map[StageName]time.Duration
	StageResults    map[StageName]StageResult
	StageErrorKinds map[StageName]StageErrorKind
	Outcome         BuildOutcome

	ProjectRoot    string
	OutDir         string
	KernelRevision string
	ClangVersion   string
	Units          []string
	Archive        string
	ArchiveObjects int
	Bindings       string
	Emitted        map[string]int
	Skipped        []bindgen.Skipped
	Signals        Signals
	ToolVersion    string
}

// NewBuildReport constructs an empty report stamped with the build id.
func NewBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   reportSchemaVersion,
		BuildID:         buildID,
		Start:           time.Now(),
		StageDurations:  make(map[StageName]time.Duration),
		StageResults:    make(map[StageName]StageResult),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		Emitted:         make(map[string]int),
		ToolVersion:     version.Version,
	}
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// Duration is the wall time between start and finish.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// RecordStageResult stores the stage's result and emits metrics.
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if r.StageResults == nil {
		r.StageResults = make(map[StageName]StageResult)
	}
	if _, seen := r.StageResults[stage]; !seen {
		r.StageOrder = append(r.StageOrder, stage)
	}
	r.StageResults[stage] = res
	if recorder == nil {
		return
	}
	switch res {
	case StageResultSuccess:
		recorder.IncStageResult(string(stage), metrics.ResultSuccess)
	case StageResultFatal:
		recorder.IncStageResult(string(stage), metrics.ResultFatal)
	case StageResultCanceled:
		recorder.IncStageResult(string(stage), metrics.ResultCanceled)
	case StageResultSkipped:
	}
}

// DeriveOutcome sets the Outcome field based on recorded errors.
func (r *BuildReport) DeriveOutcome() {
	for _, e := range r.Errors {
		var se *StageError
		if errors.As(e, &se) && se.Kind == StageErrorCanceled {
			r.Outcome = OutcomeCanceled
			return
		}
	}
	if len(r.Errors) > 0 {
		r.Outcome = OutcomeFailed
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	emitted := 0
	for _, n := range r.Emitted {
		emitted += n
	}
	return fmt.Sprintf("outcome=%s duration=%s stages=%d units=%d objects=%d bindings=%d skipped=%d errors=%d",
		r.Outcome, r.Duration().Truncate(time.Millisecond), len(r.StageResults), len(r.Units),
		r.ArchiveObjects, emitted, len(r.Skipped), len(r.Errors))
}

// Persist writes build-report.json atomically through w.
func (r *BuildReport) Persist(w *output.Writer) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	return w.WriteJSON(output.ReportFileName, r.SanitizedCopy())
}

// SanitizedCopy converts errors and durations into JSON-friendly values.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	stages := make([]StageEntry, 0, len(r.StageOrder))
	for _, name := range r.StageOrder {
		stages = append(stages, StageEntry{
			Name:       string(name),
			Result:     string(r.StageResults[name]),
			ErrorKind:  string(r.StageErrorKinds[name]),
			DurationMS: r.StageDurations[name].Milliseconds(),
		})
	}

	emitted := make(map[string]int, len(r.Emitted))
	for k, v := range r.Emitted {
		emitted[k] = v
	}
	skipped := append([]bindgen.Skipped{}, r.Skipped...)
	sort.SliceStable(skipped, func(i, j int) bool { return skipped[i].Name < skipped[j].Name })

	s := &BuildReportSerializable{
		SchemaVersion:  r.SchemaVersion,
		BuildID:        r.BuildID,
		Start:          r.Start,
		End:            r.End,
		DurationMS:     r.Duration().Milliseconds(),
		Outcome:        string(r.Outcome),
		Errors:         make([]string, len(r.Errors)),
		Stages:         stages,
		ProjectRoot:    r.ProjectRoot,
		OutDir:         r.OutDir,
		KernelRevision: r.KernelRevision,
		ClangVersion:   r.ClangVersion,
		Units:          append([]string{}, r.Units...),
		Archive:        r.Archive,
		ArchiveObjects: r.ArchiveObjects,
		Bindings:       r.Bindings,
		Emitted:        emitted,
		Skipped:        skipped,
		Signals:        r.Signals.Lines(),
		ToolVersion:    r.ToolVersion,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	if s.Signals == nil {
		s.Signals = []string{}
	}
	return s
}

// StageEntry is one stage's line in the serialized report.
type StageEntry struct {
	Name       string `json:"name"`
	Result     string `json:"result"`
	ErrorKind  string `json:"error_kind,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// BuildReportSerializable mirrors BuildReport for JSON output.
type BuildReportSerializable struct {
	SchemaVersion  int               `json:"schema_version"`
	BuildID        string            `json:"build_id"`
	Start          time.Time         `json:"start"`
	End            time.Time         `json:"end"`
	DurationMS     int64             `json:"duration_ms"`
	Outcome        string            `json:"outcome"`
	Errors         []string          `json:"errors"`
	Stages         []StageEntry      `json:"stages"`
	ProjectRoot    string            `json:"project_root"`
	OutDir         string            `json:"out_dir"`
	KernelRevision string            `json:"kernel_revision,omitempty"`
	ClangVersion   string            `json:"clang_version,omitempty"`
	Units          []string          `json:"units"`
	Archive        string            `json:"archive,omitempty"`
	ArchiveObjects int               `json:"archive_objects"`
	Bindings       string            `json:"bindings,omitempty"`
	Emitted        map[string]int    `json:"emitted"`
	Skipped        []bindgen.Skipped `json:"skipped"`
	Signals        []string          `json:"signals"`
	ToolVersion    string            `json:"tool_version,omitempty"`
}
