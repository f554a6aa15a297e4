package clangast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"

	"git.home.luguber.info/inful/ayamsys/internal/command"
	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/layout"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
)

// MinClangVersion is the oldest clang with -ast-dump=json.
const MinClangVersion = "9.0.0"

var clangVersionRegex = regexp.MustCompile(`clang version (\d+\.\d+(?:\.\d+)?)`)

var errDecodeStopped = errors.New("AST decoding stopped")

// ParseClangVersion extracts the version from `clang --version` output.
func ParseClangVersion(output string) string {
	if m := clangVersionRegex.FindStringSubmatch(output); len(m) >= 2 {
		return m[1]
	}
	return ""
}

// Parser drives clang over an umbrella header.
type Parser struct {
	clang  string
	runner command.Runner
}

// NewParser creates a parser using the given clang executable. A nil runner runs
// real processes.
func NewParser(clang string, runner command.Runner) *Parser {
	if clang == "" {
		clang = "clang"
	}
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &Parser{clang: clang, runner: runner}
}

// Args returns the clang arguments used to dump the AST of umbrella.
func Args(p *layout.Profile, umbrella string) []string {
	args := []string{"-x", "c", "-fsyntax-only", "-Xclang", "-ast-dump=json"}
	args = append(args, p.Flags()...)
	return append(args, umbrella)
}

// Version runs `clang --version` and checks it against MinClangVersion.
func (p *Parser) Version(ctx context.Context) (string, error) {
	res, err := p.runner.Run(ctx, command.Cmd{Tool: p.clang, Args: []string{"--version"}})
	if err != nil {
		return "", ferrors.ToolchainError("clang is not available").
			WithContext("tool", p.clang).
			WithCause(err).
			Build()
	}
	raw := ParseClangVersion(string(res.Stdout))
	v, err := semver.NewVersion(raw)
	if err != nil {
		return "", ferrors.ToolchainError("cannot determine clang version").
			WithContext("tool", p.clang).
			WithContext("output", res.Output()).
			WithCause(err).
			Build()
	}
	constraint, err := semver.NewConstraint(">= " + MinClangVersion)
	if err != nil {
		return "", ferrors.InternalError("invalid clang version constraint").WithCause(err).Build()
	}
	if !constraint.Check(v) {
		return "", ferrors.ParseError("clang is too old to dump the AST as JSON").
			WithContext("version", v.String()).
			WithContext("minimum", MinClangVersion).
			Build()
	}
	return v.String(), nil
}

// Parse dumps and decodes the AST of umbrella with the profile's include paths and
// defines. Any clang diagnostic error, unresolved include or undecodable output is
// a ParseError.
func (p *Parser) Parse(ctx context.Context, prof *layout.Profile, umbrella string) (*Header, error) {
	if _, err := os.Stat(umbrella); err != nil {
		return nil, ferrors.MissingPathError("umbrella header not found").
			WithContext("path", umbrella).
			WithCause(err).
			Build()
	}
	version, err := p.Version(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	args := Args(prof, umbrella)
	pr, pw := io.Pipe()
	type outcome struct {
		res *command.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := p.runner.Run(ctx, command.Cmd{Tool: p.clang, Args: args, Stdout: pw})
		_ = pw.CloseWithError(err)
		done <- outcome{res: res, err: err}
	}()

	hdr, decErr := Decode(pr)
	if decErr == nil {
		_, _ = io.Copy(io.Discard, pr)
	}
	// Unblocks clang when decoding stopped before the end of its output.
	_ = pr.CloseWithError(errDecodeStopped)
	run := <-done

	diag := ""
	if run.res != nil {
		diag = string(run.res.Stderr)
	}
	// A clang failure after undecodable output with no diagnostics is the pipe
	// closing under it; report the decode error instead.
	if run.err != nil && (decErr == nil || diag != "") {
		if ctx.Err() != nil {
			return nil, ferrors.CanceledError("header parse canceled").WithCause(ctx.Err()).Build()
		}
		return nil, ferrors.ParseError("clang rejected the umbrella header").
			WithContext("path", umbrella).
			WithContext("output", diag).
			WithCause(run.err).
			Build()
	}
	if decErr != nil {
		return nil, ferrors.ParseError("cannot decode clang AST").
			WithContext("path", umbrella).
			WithCause(decErr).
			Build()
	}
	hdr.ClangVersion = version
	slog.Debug("Parsed umbrella header",
		logfields.Path(umbrella),
		logfields.Count(len(hdr.Decls)),
		logfields.Elapsed(start),
		slog.String("clang", fmt.Sprintf("%s %s", p.clang, version)))
	return hdr, nil
}
