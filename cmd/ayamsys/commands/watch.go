package commands

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/ayamsys/internal/logfields"
	"git.home.luguber.info/inful/ayamsys/internal/pipeline"
	"git.home.luguber.info/inful/ayamsys/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce time.Duration `help:"Quiet period before a rebuild" default:"500ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	s, err := root.open(g)
	if err != nil {
		return err
	}
	ctx := g.context()
	builder := s.builder(g.stdout())

	var watcher *watch.Watcher
	var headers []string
	rebuild := func(ctx context.Context) error {
		defer s.flushMetrics()
		report, err := builder.Run(ctx, pipeline.ModeFull)
		if err != nil {
			return err
		}
		// Headers can appear after an edit adds an #include.
		headers = report.Signals.RerunIfChanged
		if watcher != nil {
			return watcher.Track(headers...)
		}
		return nil
	}

	// A broken initial tree is reported but does not stop the watch.
	if err := rebuild(ctx); err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}

	watcher, err = watch.New(watch.Inputs(s.layout(), s.cfg.UmbrellaHeader, headers...), rebuild, watch.WithDebounce(w.Debounce))
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}
