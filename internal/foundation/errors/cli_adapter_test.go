package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"missing path", MissingPathError("no such file").Build(), 3},
		{"compilation", CompilationError("cc failed").Build(), 4},
		{"toolchain", ToolchainError("clang too old").Build(), 5},
		{"parse", ParseError("bad header").Build(), 6},
		{"config", ConfigError("bad config").Build(), 7},
		{"write", WriteError("disk full").Build(), 9},
		{"wrapped parse", fmt.Errorf("stage: %w", ParseError("x").Build()), 6},
		{"unclassified error", errors.New("unknown error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	internal := InternalError("unexpected state").WithCause(errors.New("boom")).Build()
	if got := quiet.FormatError(internal); !strings.Contains(got, "use -v for details") {
		t.Errorf("expected hint in non-verbose output, got %q", got)
	}
	if got := verbose.FormatError(internal); !strings.Contains(got, "boom") {
		t.Errorf("expected cause in verbose output, got %q", got)
	}

	missing := MissingPathError("translation unit not found").WithContext("path", "nurbs/aptt.c").Build()
	if got := quiet.FormatError(missing); !strings.Contains(got, "nurbs/aptt.c") {
		t.Errorf("expected user-fixable errors to show context, got %q", got)
	}

	if got := quiet.FormatError(nil); got != "" {
		t.Errorf("expected empty string for nil, got %q", got)
	}
}
