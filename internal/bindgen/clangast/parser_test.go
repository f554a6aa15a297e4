package clangast

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ayamsys/internal/command"
	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/layout"
)

func fakeClang(t *testing.T, version string, ast []byte, astErr error) *command.FakeRunner {
	t.Helper()
	return command.NewFakeRunner().Handle("clang", func(c command.Cmd) (*command.Result, error) {
		if slices.Contains(c.Args, "--version") {
			return &command.Result{Stdout: []byte(version)}, nil
		}
		if astErr != nil {
			return &command.Result{Stderr: ast, ExitCode: 1}, astErr
		}
		return &command.Result{Stdout: ast}, nil
	})
}

func umbrellaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wrapper.h")
	require.NoError(t, os.WriteFile(path, []byte("#include <ayam.h>\n"), 0o600))
	return path
}

func TestParseClangVersion(t *testing.T) {
	cases := map[string]string{
		"clang version 14.0.6\nTarget: x86_64-pc-linux-gnu": "14.0.6",
		"Ubuntu clang version 18.1.3 (1ubuntu1)":            "18.1.3",
		"Apple clang version 15.0.0 (clang-1500.3.9.4)":     "15.0.0",
		"Debian clang version 11.0":                         "11.0",
		"gcc (GCC) 13.2.0":                                  "",
	}
	for in, want := range cases {
		require.Equal(t, want, ParseClangVersion(in), in)
	}
}

func TestParser_ParseUsesProfileFlags(t *testing.T) {
	ast, err := os.ReadFile(filepath.Join("testdata", "kernel_ast.json"))
	require.NoError(t, err)
	runner := fakeClang(t, "clang version 14.0.6\n", ast, nil)
	prof := layout.NewProfile(layout.Resolve("/proj"))
	umbrella := umbrellaFile(t)

	hdr, err := NewParser("clang", runner).Parse(context.Background(), prof, umbrella)
	require.NoError(t, err)
	require.Equal(t, "14.0.6", hdr.ClangVersion)
	require.Len(t, hdr.Decls, 20)

	calls := runner.CallsTo("clang")
	require.Len(t, calls, 2)
	args := calls[1].Args
	require.Equal(t, umbrella, args[len(args)-1])
	require.Equal(t, Args(prof, umbrella), args)
	require.True(t, prof.IncludePaths().Equal(layout.IncludesFromFlags(args)))
	require.Equal(t, []string{"AYUSEAFFINE"}, layout.DefinesFromFlags(args))
}

func TestParser_ClangTooOld(t *testing.T) {
	runner := fakeClang(t, "clang version 8.0.1\n", nil, nil)
	_, err := NewParser("clang", runner).Parse(context.Background(), layout.NewProfile(layout.Resolve("/proj")), umbrellaFile(t))
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryParse))
	require.Len(t, runner.Calls(), 1)
}

func TestParser_ClangMissing(t *testing.T) {
	runner := command.NewFakeRunner().Handle("clang", func(command.Cmd) (*command.Result, error) {
		return &command.Result{ExitCode: -1}, command.ErrToolNotFound
	})
	_, err := NewParser("clang", runner).Parse(context.Background(), layout.NewProfile(layout.Resolve("/proj")), umbrellaFile(t))
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryToolchain))
}

func TestParser_UnresolvedIncludeIsParseError(t *testing.T) {
	diag := []byte("wrapper.h:1:10: fatal error: 'ayam.h' file not found\n")
	runner := fakeClang(t, "clang version 14.0.6\n", diag, errors.New("exit status 1"))

	_, err := NewParser("clang", runner).Parse(context.Background(), layout.NewProfile(layout.Resolve("/proj")), umbrellaFile(t))
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, ferrors.CategoryParse, ce.Category())
	out, _ := ce.Context().GetString("output")
	require.Contains(t, out, "file not found")
}

func TestParser_GarbageOutputIsParseError(t *testing.T) {
	runner := fakeClang(t, "clang version 14.0.6\n", []byte("not json"), nil)
	_, err := NewParser("clang", runner).Parse(context.Background(), layout.NewProfile(layout.Resolve("/proj")), umbrellaFile(t))
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryParse))
}

func TestParser_MissingUmbrella(t *testing.T) {
	runner := command.NewFakeRunner()
	_, err := NewParser("clang", runner).Parse(context.Background(), layout.NewProfile(layout.Resolve("/proj")), "/nonexistent/wrapper.h")
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryMissingPath))
	require.Empty(t, runner.Calls())
}

func TestParser_IntegrationRealClang(t *testing.T) {
	if testing.Short() || !command.LookPath("clang") {
		t.Skip("clang not on PATH")
	}
	root := t.TempDir()
	l := layout.Resolve(root)
	for _, dir := range l.IncludePaths() {
		require.NoError(t, os.MkdirAll(dir, 0o750))
	}
	header := `#ifndef AYUSEAFFINE
#error AYUSEAFFINE must be defined
#endif
typedef struct ay_object_s ay_object;
typedef enum { AY_OK = 0, AY_ERROR = 1 } ay_result_t;
ay_object *ay_create(const char *name);
ay_result_t ay_destroy(ay_object *obj);
`
	require.NoError(t, os.WriteFile(filepath.Join(l.Kernel, "ayam.h"), []byte(header), 0o600))
	umbrella := filepath.Join(root, "wrapper.h")
	require.NoError(t, os.WriteFile(umbrella, []byte("#include \"ayam.h\"\n"), 0o600))

	hdr, err := NewParser("clang", nil).Parse(context.Background(), layout.NewProfile(l), umbrella)
	require.NoError(t, err)

	var names []string
	for _, d := range hdr.Decls {
		if d.File == filepath.Join(l.Kernel, "ayam.h") && d.Name != "" {
			names = append(names, d.Name)
		}
	}
	require.Equal(t, []string{"ay_object_s", "ay_object", "ay_result_t", "ay_create", "ay_destroy"}, names)
}
