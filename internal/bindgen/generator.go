package bindgen

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen/clangast"
	"git.home.luguber.info/inful/ayamsys/internal/layout"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
	"git.home.luguber.info/inful/ayamsys/internal/metrics"
)

// HeaderParser produces the declarations behind an umbrella header.
type HeaderParser interface {
	Parse(ctx context.Context, prof *layout.Profile, umbrella string) (*clangast.Header, error)
}

// Generator parses the umbrella header and generates the module.
type Generator struct {
	parser   HeaderParser
	opts     Options
	recorder metrics.Recorder
}

// NewGenerator creates a generator. A nil recorder disables metrics.
func NewGenerator(parser HeaderParser, opts Options, recorder metrics.Recorder) *Generator {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Generator{parser: parser, opts: opts, recorder: recorder}
}

// Options returns the generation options.
func (g *Generator) Options() Options { return g.opts }

// Run parses with the shared profile and generates the module in memory. Nothing
// is written; on error no module is returned.
func (g *Generator) Run(ctx context.Context, prof *layout.Profile) (*Module, error) {
	hdr, err := g.parser.Parse(ctx, prof, g.opts.Umbrella)
	if err != nil {
		return nil, err
	}
	mod, err := Generate(hdr, prof, g.opts)
	if err != nil {
		return nil, err
	}
	for kind, n := range mod.Counts() {
		g.recorder.SetEmittedDecls(kind, n)
	}
	for _, s := range mod.Skipped {
		g.recorder.IncSkippedDecl(s.Kind.String())
	}
	slog.Info("Generated bindings",
		logfields.Count(len(mod.Bindings)),
		slog.Int("skipped", len(mod.Skipped)),
		logfields.Path(g.opts.Umbrella))
	return mod, nil
}
