// Package command runs the external tools of the pipeline (compiler, archiver,
// symbol lister, header parser) with captured output.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/ayamsys/internal/logfields"
)

// ErrToolNotFound indicates the requested executable is not on PATH.
var ErrToolNotFound = errors.New("tool not found")

// Cmd describes one invocation.
type Cmd struct {
	Tool string
	Args []string
	Dir  string
	// Stdout, when set, receives standard output instead of the in-memory buffer.
	// Used for large outputs such as AST dumps.
	Stdout io.Writer
}

// String renders the command line for logs and error context.
func (c Cmd) String() string {
	return strings.Join(append([]string{c.Tool}, c.Args...), " ")
}

// Result carries the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Output returns stderr and stdout joined, whichever is non-empty.
func (r *Result) Output() string {
	out := strings.TrimSpace(string(r.Stdout))
	errOut := strings.TrimSpace(string(r.Stderr))
	switch {
	case out == "":
		return errOut
	case errOut == "":
		return out
	default:
		return out + "\n" + errOut
	}
}

// Runner executes commands. A non-zero exit status is returned as an error together
// with the populated Result.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) (*Result, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Cmd) (*Result, error) {
	path, err := exec.LookPath(c.Tool)
	if err != nil {
		return &Result{ExitCode: -1}, fmt.Errorf("%w: %s: %w", ErrToolNotFound, c.Tool, err)
	}

	// #nosec G204 - tool and arguments come from the pipeline's own configuration
	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	cmd.Stderr = &stderr

	slog.Debug("Running tool", logfields.Tool(c.Tool), logfields.Args(c.Args))
	start := time.Now()
	err = cmd.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s interrupted: %w", c.Tool, ctxErr)
		}
		return res, fmt.Errorf("%s exited with status %d: %w", c.Tool, res.ExitCode, err)
	}
	if len(res.Stderr) > 0 {
		slog.Debug("Tool stderr", logfields.Tool(c.Tool), slog.String("output", string(res.Stderr)))
	}
	return res, nil
}

// LookPath reports whether tool resolves on PATH.
func LookPath(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}
