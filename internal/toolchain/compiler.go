package toolchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/ayamsys/internal/command"
	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/layout"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
	"git.home.luguber.info/inful/ayamsys/internal/metrics"
	"git.home.luguber.info/inful/ayamsys/internal/sources"
	"git.home.luguber.info/inful/ayamsys/internal/workspace"
)

// Compiler turns a source selection into a static archive.
type Compiler struct {
	tools    Tools
	outDir   string
	jobs     int
	objDir   string
	tmpBase  string
	runner   command.Runner
	recorder metrics.Recorder
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithJobs bounds the number of concurrent compiles. Values below one mean NumCPU.
func WithJobs(n int) Option { return func(c *Compiler) { c.jobs = n } }

// WithRunner replaces the process runner (tests use command.FakeRunner).
func WithRunner(r command.Runner) Option { return func(c *Compiler) { c.runner = r } }

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(c *Compiler) { c.recorder = r } }

// WithObjectDir keeps object files in dir instead of a temporary workspace.
func WithObjectDir(dir string) Option { return func(c *Compiler) { c.objDir = dir } }

// WithTempBase sets the parent of the temporary object workspace.
func WithTempBase(dir string) Option { return func(c *Compiler) { c.tmpBase = dir } }

// NewCompiler creates a compiler that writes its archive into outDir.
func NewCompiler(tools Tools, outDir string, opts ...Option) *Compiler {
	c := &Compiler{
		tools:    tools.WithDefaults(),
		outDir:   outDir,
		runner:   command.ExecRunner{},
		recorder: metrics.NoopRecorder{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.jobs < 1 {
		c.jobs = runtime.NumCPU()
	}
	return c
}

// Jobs returns the effective concurrency bound.
func (c *Compiler) Jobs() int { return c.jobs }

// CompileArgs builds the compiler argument list for one unit.
func CompileArgs(p *layout.Profile, src, obj string) []string {
	args := BaseCFlags()
	args = append(args, "-c")
	args = append(args, p.Flags()...)
	return append(args, src, "-o", obj)
}

// Compile builds every unit of sel with the profile and archives the objects as
// lib<name>.a in the output directory. Nothing is placed at the final path unless
// every unit compiled and the archiver succeeded.
func (c *Compiler) Compile(ctx context.Context, p *layout.Profile, sel sources.Selection, name string) (*Archive, error) {
	if err := ValidateName(name); err != nil {
		return nil, ferrors.ValidationError(err.Error()).WithContext("archive", name).Build()
	}
	if len(sel) == 0 {
		return nil, ferrors.ValidationError("no translation units selected").Build()
	}
	if err := preflight(p, sel); err != nil {
		return nil, err
	}
	if !LinkageDefined() {
		slog.Warn("Runtime linkage is not defined for this platform; configure toolchain.runtime_link if linking fails",
			slog.String("goos", runtime.GOOS))
	}

	ws := c.workspace()
	objDir, err := ws.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			slog.Warn("Failed to remove object workspace", logfields.Path(objDir), logfields.Error(err))
		}
	}()

	objects, err := c.compileAll(ctx, p, sel, objDir)
	if err != nil {
		return nil, err
	}

	archivePath, err := c.archive(ctx, name, objects)
	if err != nil {
		return nil, err
	}
	members := make([]string, 0, len(objects))
	for _, o := range objects {
		members = append(members, filepath.Base(o))
	}
	slog.Info("Archive created", logfields.Archive(archivePath), logfields.Count(len(members)))
	return &Archive{Name: name, Path: archivePath, Objects: members}, nil
}

func (c *Compiler) workspace() *workspace.Workspace {
	if c.objDir != "" {
		return workspace.Persistent(c.objDir)
	}
	return workspace.Ephemeral(c.tmpBase)
}

// preflight checks the include directories; units are checked by Verify.
func preflight(p *layout.Profile, sel sources.Selection) error {
	if err := sel.Verify(); err != nil {
		return err
	}
	for _, dir := range p.IncludePaths() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			if err == nil {
				err = fmt.Errorf("%s is not a directory", dir)
			}
			return ferrors.MissingPathError("include directory not found").
				WithContext("path", dir).
				WithCause(err).
				Build()
		}
	}
	return nil
}

// compileAll runs the compiler for every unit with at most c.jobs in flight. The
// first failure cancels the remaining compiles. Objects are returned in unit order.
func (c *Compiler) compileAll(ctx context.Context, p *layout.Profile, sel sources.Selection, objDir string) ([]string, error) {
	objects := make([]string, len(sel))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs)
	c.recorder.SetCompileConcurrency(min(c.jobs, len(sel)))

	for i, u := range sel {
		obj := filepath.Join(objDir, u.Object())
		objects[i] = obj
		g.Go(func() error {
			return c.compileUnit(gctx, p, u, obj)
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ferrors.CanceledError("compilation canceled").WithCause(ctxErr).Build()
		}
		return nil, err
	}
	return objects, nil
}

func (c *Compiler) compileUnit(ctx context.Context, p *layout.Profile, u sources.Unit, obj string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	cmd := command.Cmd{Tool: c.tools.CC, Args: CompileArgs(p, u.Path, obj)}
	res, err := c.runner.Run(ctx, cmd)
	c.recorder.ObserveCompileUnitDuration(u.Name, time.Since(start), err == nil)
	if err != nil {
		if errors.Is(err, command.ErrToolNotFound) {
			return ferrors.ToolchainError("C compiler not found").
				WithContext("tool", c.tools.CC).
				WithCause(err).
				Build()
		}
		if ctx.Err() != nil {
			return err
		}
		return ferrors.CompilationError("translation unit failed to compile").
			WithContext("file", u.Name).
			WithContext("tool", c.tools.CC).
			WithContext("output", res.Output()).
			WithCause(err).
			Build()
	}
	slog.Debug("Compiled translation unit", logfields.File(u.Name), logfields.Elapsed(start))
	return nil
}

// archive packs objects into a temp archive next to the destination and renames it
// into place.
func (c *Compiler) archive(ctx context.Context, name string, objects []string) (string, error) {
	if err := os.MkdirAll(c.outDir, 0o750); err != nil {
		return "", ferrors.WriteError("cannot create output directory").
			WithContext("path", c.outDir).
			WithCause(err).
			Build()
	}
	final := filepath.Join(c.outDir, FileName(name))
	tmp := filepath.Join(c.outDir, fmt.Sprintf(".%s.%d.tmp", FileName(name), os.Getpid()))
	// ar appends to an existing archive; a stale temp from a killed run must go.
	_ = os.Remove(tmp)

	args := append([]string{"crs", tmp}, objects...)
	res, err := c.runner.Run(ctx, command.Cmd{Tool: c.tools.AR, Args: args})
	if err != nil {
		_ = os.Remove(tmp)
		if errors.Is(err, command.ErrToolNotFound) {
			return "", ferrors.ToolchainError("archiver not found").
				WithContext("tool", c.tools.AR).
				WithCause(err).
				Build()
		}
		return "", ferrors.CompilationError("archive creation failed").
			WithContext("archive", final).
			WithContext("output", res.Output()).
			WithCause(err).
			Build()
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", ferrors.WriteError("cannot move archive into place").
			WithContext("path", final).
			WithCause(err).
			Build()
	}
	return final, nil
}
