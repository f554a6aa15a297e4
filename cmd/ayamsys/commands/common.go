package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ayamsys/internal/command"
	"git.home.luguber.info/inful/ayamsys/internal/config"
)

// Global carries process-wide collaborators into every command.
type Global struct {
	Logger *slog.Logger
	Ctx    context.Context
	Stdout io.Writer
	// Runner executes external tools; nil runs real processes.
	Runner command.Runner
	// LookPath reports whether a tool is installed; nil searches PATH.
	LookPath func(tool string) bool
}

func (g *Global) context() context.Context {
	if g == nil || g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) runner() command.Runner {
	if g == nil || g.Runner == nil {
		return command.ExecRunner{}
	}
	return g.Runner
}

func (g *Global) lookPath(tool string) bool {
	if g == nil || g.LookPath == nil {
		return command.LookPath(tool)
	}
	return g.LookPath(tool)
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path" default:"ayamsys.yaml"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`
	ProjectRoot string           `name:"project-root" short:"C" help:"Project root holding the vendored kernel under ayam/ayam/src"`
	OutDir      string           `name:"out-dir" short:"o" help:"Directory for the archive, bindings and build report"`
	Umbrella    string           `name:"umbrella" help:"Umbrella header to parse (default <project-root>/wrapper.h)"`
	Jobs        *int             `short:"j" help:"Parallel compile jobs (0 means one per CPU)"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics to this file after the run"`

	Build          BuildCmd          `cmd:"" help:"Compile the kernel archive and generate bindings"`
	Compile        CompileCmd        `cmd:"" help:"Compile the kernel archive only"`
	Bindgen        BindgenCmd        `cmd:"" help:"Generate the binding module only"`
	Symbols        SymbolsCmd        `cmd:"" help:"List the declarations the generator would bind or skip"`
	ArchiveSymbols ArchiveSymbolsCmd `cmd:"" name:"archive-symbols" help:"List the symbols defined by the compiled archive"`
	Check          CheckCmd          `cmd:"" help:"Verify the kernel tree and toolchain without building"`
	Watch          WatchCmd          `cmd:"" help:"Rebuild whenever the umbrella header or a translation unit changes"`
	Init           InitCmd           `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func (c *CLI) overrides() config.Overrides {
	return config.Overrides{
		ProjectRoot: c.ProjectRoot,
		OutDir:      c.OutDir,
		Umbrella:    c.Umbrella,
		Jobs:        c.Jobs,
		MetricsFile: c.MetricsFile,
	}
}

// loadConfig loads .env files and the configuration. The default config file
// is optional; an explicitly named one must exist.
func (c *CLI) loadConfig() (*config.Config, error) {
	if _, err := config.LoadDotEnv("."); err != nil {
		return nil, err
	}
	if c.Config == "" || c.Config == config.DefaultFileName {
		return config.LoadOptional(config.DefaultFileName, c.overrides())
	}
	return config.Load(c.Config, c.overrides())
}
