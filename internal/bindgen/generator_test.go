package bindgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen/clangast"
	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/layout"
	"git.home.luguber.info/inful/ayamsys/internal/metrics"
)

type stubParser struct {
	hdr      *clangast.Header
	err      error
	umbrella string
	profile  *layout.Profile
}

func (s *stubParser) Parse(_ context.Context, prof *layout.Profile, umbrella string) (*clangast.Header, error) {
	s.profile, s.umbrella = prof, umbrella
	return s.hdr, s.err
}

type countingRecorder struct {
	metrics.NoopRecorder
	emitted map[string]int
	skipped int
}

func (c *countingRecorder) SetEmittedDecls(kind string, n int) { c.emitted[kind] = n }
func (c *countingRecorder) IncSkippedDecl(string)              { c.skipped++ }

func TestGenerator_RunPassesSharedProfile(t *testing.T) {
	parser := &stubParser{hdr: kernelHeader(t)}
	rec := &countingRecorder{emitted: map[string]int{}}
	prof := testProfile()

	mod, err := NewGenerator(parser, testOptions(), rec).Run(context.Background(), prof)
	require.NoError(t, err)
	require.Same(t, prof, parser.profile)
	require.Equal(t, "/proj/wrapper.h", parser.umbrella)

	require.Equal(t, 4, rec.emitted["function"])
	require.Equal(t, 3, rec.skipped)
	require.NotEmpty(t, mod.Source)
}

func TestGenerator_ParseErrorYieldsNoModule(t *testing.T) {
	parser := &stubParser{err: ferrors.ParseError("clang rejected the umbrella header").Build()}
	mod, err := NewGenerator(parser, testOptions(), nil).Run(context.Background(), testProfile())
	require.Nil(t, mod)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryParse))
}
