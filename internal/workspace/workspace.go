package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
)

const dirPerm = 0o750

// Workspace is the directory object files are compiled into.
type Workspace struct {
	base string
	dir  string
	keep bool
}

// Ephemeral returns a workspace created fresh under base (os.TempDir when empty)
// and removed by Close.
func Ephemeral(base string) *Workspace {
	if base == "" {
		base = os.TempDir()
	}
	return &Workspace{base: base}
}

// Persistent returns a workspace at dir that Close leaves in place. Objects from
// an earlier run are overwritten, never reused.
func Persistent(dir string) *Workspace {
	return &Workspace{dir: filepath.Clean(dir), keep: true}
}

// Open creates the directory and returns its path.
func (w *Workspace) Open() (string, error) {
	if w.keep {
		if err := os.MkdirAll(w.dir, dirPerm); err != nil {
			return "", w.fail("cannot create object directory", w.dir, err)
		}
		slog.Debug("Using persistent object directory", logfields.Path(w.dir))
		return w.dir, nil
	}

	if err := os.MkdirAll(w.base, dirPerm); err != nil {
		return "", w.fail("cannot create workspace base directory", w.base, err)
	}
	// Random suffix: watch reruns within the same second get distinct dirs.
	stamp := time.Now().Format("20060102-150405")
	dir, err := os.MkdirTemp(w.base, fmt.Sprintf("ayamsys-%s-", stamp))
	if err != nil {
		return "", w.fail("cannot create object workspace", w.base, err)
	}
	w.dir = dir
	slog.Debug("Created object workspace", logfields.Path(dir))
	return dir, nil
}

// Dir returns the workspace path, empty before Open.
func (w *Workspace) Dir() string { return w.dir }

// Persistent reports whether Close keeps the directory.
func (w *Workspace) Persistent() bool { return w.keep }

// Close removes an ephemeral workspace. It is safe to call more than once.
func (w *Workspace) Close() error {
	if w.keep || w.dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return w.fail("cannot remove object workspace", w.dir, err)
	}
	slog.Debug("Removed object workspace", logfields.Path(w.dir))
	w.dir = ""
	return nil
}

func (w *Workspace) fail(msg, path string, err error) error {
	return errors.WriteError(msg).WithContext("path", path).WithCause(err).Build()
}
