package commands

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen"
	"git.home.luguber.info/inful/ayamsys/internal/bindgen/clangast"
	"git.home.luguber.info/inful/ayamsys/internal/command"
	"git.home.luguber.info/inful/ayamsys/internal/config"
	"git.home.luguber.info/inful/ayamsys/internal/layout"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
	"git.home.luguber.info/inful/ayamsys/internal/metrics"
	"git.home.luguber.info/inful/ayamsys/internal/pipeline"
	"git.home.luguber.info/inful/ayamsys/internal/toolchain"
)

// session wires the configured collaborators for one command invocation.
type session struct {
	cfg      *config.Config
	runner   command.Runner
	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder
}

func (c *CLI) open(g *Global) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, runner: g.runner(), recorder: metrics.NoopRecorder{}}
	if cfg.Report.MetricsFile != "" {
		s.prom = metrics.NewPrometheusRecorder(prometheus.NewRegistry())
		s.recorder = s.prom
	}
	slog.Debug("Configuration loaded",
		logfields.Path(cfg.ProjectRoot),
		slog.String("out_dir", cfg.OutDir),
		slog.String("umbrella", cfg.UmbrellaHeader))
	return s, nil
}

func (s *session) layout() *layout.Layout { return layout.Resolve(s.cfg.ProjectRoot) }

func (s *session) compiler() *toolchain.Compiler {
	return toolchain.NewCompiler(s.cfg.Tools(), s.cfg.OutDir,
		toolchain.WithJobs(s.cfg.Toolchain.Jobs),
		toolchain.WithRunner(s.runner),
		toolchain.WithRecorder(s.recorder))
}

func (s *session) parser() *clangast.Parser {
	return clangast.NewParser(s.cfg.Toolchain.Clang, s.runner)
}

func (s *session) generator() *bindgen.Generator {
	return bindgen.NewGenerator(s.parser(), s.cfg.BindgenOptions(), s.recorder)
}

func (s *session) builder(signals io.Writer) *pipeline.Builder {
	return pipeline.NewBuilder(pipeline.Inputs{
		ProjectRoot: s.cfg.ProjectRoot,
		OutDir:      s.cfg.OutDir,
		Umbrella:    s.cfg.UmbrellaHeader,
		ArchiveName: s.cfg.ArchiveName,
	},
		pipeline.WithCompiler(s.compiler()),
		pipeline.WithGenerator(s.generator()),
		pipeline.WithRecorder(s.recorder),
		pipeline.WithSignalOutput(signals),
	)
}

// flushMetrics writes the textfile when a metrics file is configured. A
// failure is logged; metrics never fail a build.
func (s *session) flushMetrics() {
	if s == nil || s.prom == nil {
		return
	}
	if err := s.prom.WriteTextfile(s.cfg.Report.MetricsFile); err != nil {
		slog.Warn("Failed to write metrics file", logfields.Path(s.cfg.Report.MetricsFile), logfields.Error(err))
		return
	}
	slog.Debug("Metrics written", logfields.Path(s.cfg.Report.MetricsFile))
}
