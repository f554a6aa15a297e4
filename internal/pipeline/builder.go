package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen"
	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/kernelrev"
	"git.home.luguber.info/inful/ayamsys/internal/layout"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
	"git.home.luguber.info/inful/ayamsys/internal/metrics"
	"git.home.luguber.info/inful/ayamsys/internal/output"
	"git.home.luguber.info/inful/ayamsys/internal/sources"
	"git.home.luguber.info/inful/ayamsys/internal/toolchain"
)

// ArchiveCompiler compiles the selected units into the static archive.
type ArchiveCompiler interface {
	Compile(ctx context.Context, p *layout.Profile, sel sources.Selection, name string) (*toolchain.Archive, error)
}

// BindingGenerator produces the binding module from the shared profile.
type BindingGenerator interface {
	Run(ctx context.Context, prof *layout.Profile) (*bindgen.Module, error)
}

// Mode selects which artifacts a run produces.
type Mode int

const (
	ModeFull Mode = iota
	ModeCompileOnly
	ModeBindgenOnly
)

func (m Mode) compiles() bool { return m == ModeFull || m == ModeCompileOnly }
func (m Mode) binds() bool    { return m == ModeFull || m == ModeBindgenOnly }

// Inputs are the per-invocation locations.
type Inputs struct {
	ProjectRoot string
	OutDir      string
	Umbrella    string
	ArchiveName string
}

// BuildState carries data between stages.
type BuildState struct {
	Inputs    Inputs
	Layout    *layout.Layout
	Profile   *layout.Profile
	Selection sources.Selection
	Archive   *toolchain.Archive
	Module    *bindgen.Module
	Report    *BuildReport

	recorder metrics.Recorder
}

// Recorder returns the metrics recorder, never nil.
func (bs *BuildState) Recorder() metrics.Recorder {
	if bs.recorder == nil {
		return metrics.NoopRecorder{}
	}
	return bs.recorder
}

// RevisionReader resolves the kernel's revision.
type RevisionReader func(dir string) (kernelrev.Revision, error)

// Builder wires the stages to their collaborators.
type Builder struct {
	inputs    Inputs
	compiler  ArchiveCompiler
	generator BindingGenerator
	writer    *output.Writer
	recorder  metrics.Recorder
	signalOut io.Writer
	revision  RevisionReader
}

// Option configures a Builder.
type Option func(*Builder)

func WithCompiler(c ArchiveCompiler) Option      { return func(b *Builder) { b.compiler = c } }
func WithGenerator(g BindingGenerator) Option    { return func(b *Builder) { b.generator = g } }
func WithWriter(w *output.Writer) Option         { return func(b *Builder) { b.writer = w } }
func WithRecorder(r metrics.Recorder) Option     { return func(b *Builder) { b.recorder = r } }
func WithSignalOutput(w io.Writer) Option        { return func(b *Builder) { b.signalOut = w } }
func WithRevisionReader(r RevisionReader) Option { return func(b *Builder) { b.revision = r } }

// NewBuilder creates a builder. Without WithWriter the output directory is
// written through the OS filesystem; signals go to stdout.
func NewBuilder(in Inputs, opts ...Option) *Builder {
	if in.ArchiveName == "" {
		in.ArchiveName = toolchain.DefaultArchiveName
	}
	b := &Builder{
		inputs:    in,
		recorder:  metrics.NoopRecorder{},
		signalOut: os.Stdout,
		revision:  kernelrev.Read,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.writer == nil {
		b.writer = output.NewDir(in.OutDir)
	}
	return b
}

// Plan returns the ordered stages for mode.
func (b *Builder) Plan(mode Mode) *Plan {
	return NewPlan().
		Add(StageResolvePaths, b.resolvePaths).
		Add(StageSelectSources, b.selectSources).
		AddIf(mode.compiles(), StageCompileNative, b.compileNative).
		AddIf(mode.binds(), StageGenerateBindings, b.generateBindings).
		Add(StageWriteOutput, b.writeOutput)
}

// Run executes the plan for mode, persists the report and, on success, emits
// the build signals. The report is returned even when the build fails.
func (b *Builder) Run(ctx context.Context, mode Mode) (*BuildReport, error) {
	report := NewBuildReport(uuid.NewString())
	report.ProjectRoot = b.inputs.ProjectRoot
	report.OutDir = b.inputs.OutDir
	bs := &BuildState{Inputs: b.inputs, Report: report, recorder: b.recorder}

	slog.Info("Build started", logfields.BuildID(report.BuildID), logfields.Path(b.inputs.ProjectRoot))
	runErr := RunStages(ctx, bs, b.Plan(mode).Build())

	report.Finish()
	report.DeriveOutcome()
	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(string(report.Outcome))

	if err := report.Persist(b.writer); err != nil {
		slog.Warn("Failed to persist build report", logfields.Error(err))
		if runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return report, runErr
	}

	if err := report.Signals.Emit(b.signalOut); err != nil {
		return report, err
	}
	slog.Info("Build completed", logfields.BuildID(report.BuildID), slog.String("summary", report.Summary()))
	return report, nil
}

func (b *Builder) resolvePaths(_ context.Context, bs *BuildState) error {
	if bs.Inputs.ProjectRoot == "" {
		return ferrors.ValidationError("project root is empty").Build()
	}
	bs.Layout = layout.Resolve(bs.Inputs.ProjectRoot)
	bs.Profile = layout.NewProfile(bs.Layout)
	bs.Report.ProjectRoot = bs.Layout.Root
	slog.Debug("Resolved native profile", slog.String("profile", bs.Profile.String()))

	if b.revision == nil {
		return nil
	}
	rev, err := b.revision(bs.Layout.Kernel)
	if err != nil {
		slog.Debug("Kernel revision unavailable", logfields.Path(bs.Layout.Kernel), logfields.Error(err))
		return nil
	}
	bs.Report.KernelRevision = rev.String()
	return nil
}

func (b *Builder) selectSources(_ context.Context, bs *BuildState) error {
	sel := sources.Select(bs.Layout)
	if err := sel.Verify(); err != nil {
		return err
	}
	bs.Selection = sel
	bs.Report.Units = sel.Names()
	return nil
}

func (b *Builder) compileNative(ctx context.Context, bs *BuildState) error {
	if b.compiler == nil {
		return ferrors.InternalError("no compiler configured").Build()
	}
	arch, err := b.compiler.Compile(ctx, bs.Profile, bs.Selection, bs.Inputs.ArchiveName)
	if err != nil {
		return err
	}
	bs.Archive = arch
	bs.Report.Archive = arch.Path
	bs.Report.ArchiveObjects = len(arch.Objects)
	return nil
}

func (b *Builder) generateBindings(ctx context.Context, bs *BuildState) error {
	if b.generator == nil {
		return ferrors.InternalError("no binding generator configured").Build()
	}
	mod, err := b.generator.Run(ctx, bs.Profile)
	if err != nil {
		return err
	}
	bs.Module = mod
	bs.Report.ClangVersion = mod.ClangVersion
	bs.Report.Emitted = mod.Counts()
	bs.Report.Skipped = mod.Skipped
	return nil
}

func (b *Builder) writeOutput(_ context.Context, bs *BuildState) error {
	var sig Signals
	if bs.Module != nil {
		dest, err := b.writer.WriteModule(bs.Module)
		if err != nil {
			return err
		}
		bs.Report.Bindings = dest
		sig.RerunIfChanged = append(sig.RerunIfChanged, bs.Inputs.Umbrella)
		for _, h := range bs.Module.Headers {
			if !slices.Contains(sig.RerunIfChanged, h) {
				sig.RerunIfChanged = append(sig.RerunIfChanged, h)
			}
		}
	}
	if bs.Archive != nil {
		sig.LinkLibs = append(sig.LinkLibs, "static="+bs.Archive.Name)
		sig.LinkSearch = append(sig.LinkSearch, "native="+filepath.Dir(bs.Archive.Path))
	}
	bs.Report.Signals = sig
	return nil
}
