package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/ayamsys/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	return runPipeline(g, root, pipeline.ModeFull)
}

// CompileCmd implements the 'compile' command.
type CompileCmd struct{}

func (c *CompileCmd) Run(g *Global, root *CLI) error {
	return runPipeline(g, root, pipeline.ModeCompileOnly)
}

// BindgenCmd implements the 'bindgen' command.
type BindgenCmd struct{}

func (b *BindgenCmd) Run(g *Global, root *CLI) error {
	return runPipeline(g, root, pipeline.ModeBindgenOnly)
}

func runPipeline(g *Global, root *CLI, mode pipeline.Mode) error {
	s, err := root.open(g)
	if err != nil {
		return err
	}
	defer s.flushMetrics()

	report, err := s.builder(g.stdout()).Run(g.context(), mode)
	if err != nil {
		if report != nil {
			slog.Error("Build failed", slog.String("summary", report.Summary()))
		}
		return err
	}
	return nil
}
