package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyTool       = "tool"
	KeyArgs       = "args"
	KeySymbol     = "symbol"
	KeyKind       = "kind"
	KeyArchive    = "archive"
	KeyCount      = "count"
	KeyReason     = "reason"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Tool(name string) slog.Attr      { return slog.String(KeyTool, name) }
func Args(args []string) slog.Attr    { return slog.Any(KeyArgs, args) }
func Symbol(name string) slog.Attr    { return slog.String(KeySymbol, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Archive(p string) slog.Attr      { return slog.String(KeyArchive, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Reason(r string) slog.Attr       { return slog.String(KeyReason, r) }

// Elapsed converts the time since start into a duration_ms attribute.
func Elapsed(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
