package command

import (
	"context"
	"fmt"
	"sync"
)

// Handler produces the outcome of a fake invocation.
type Handler func(cmd Cmd) (*Result, error)

// FakeRunner records every invocation and answers from per-tool handlers.
// Tools without a handler succeed with empty output.
type FakeRunner struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Cmd
}

// NewFakeRunner creates an empty fake.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{handlers: make(map[string]Handler)}
}

// Handle registers the handler for a tool name.
func (f *FakeRunner) Handle(tool string, h Handler) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[tool] = h
	return f
}

// Run implements Runner.
func (f *FakeRunner) Run(ctx context.Context, c Cmd) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	h := f.handlers[c.Tool]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &Result{ExitCode: -1}, fmt.Errorf("%s interrupted: %w", c.Tool, err)
	}
	if h == nil {
		return &Result{}, nil
	}
	res, err := h(c)
	if res == nil {
		res = &Result{}
	}
	if c.Stdout != nil && len(res.Stdout) > 0 {
		if _, werr := c.Stdout.Write(res.Stdout); werr != nil {
			return res, werr
		}
	}
	return res, err
}

// Calls returns a copy of the recorded invocations.
func (f *FakeRunner) Calls() []Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Cmd(nil), f.calls...)
}

// CallsTo filters recorded invocations by tool.
func (f *FakeRunner) CallsTo(tool string) []Cmd {
	var out []Cmd
	for _, c := range f.Calls() {
		if c.Tool == tool {
			out = append(out, c)
		}
	}
	return out
}
