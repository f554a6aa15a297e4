// Package output places the generated artifacts in the output directory.
//
// Every file is staged as a temp file in the destination directory and renamed
// over the final name, so readers see either the previous file or the complete
// new one.
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/goccy/go-json"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen"
	"git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
)

// ReportFileName is the build report's name in the output directory.
const ReportFileName = "build-report.json"

const defaultPerm os.FileMode = 0o644

// Writer writes artifacts into a billy filesystem rooted at the output dir.
type Writer struct {
	fs   billy.Filesystem
	perm os.FileMode
}

// New returns a writer over fs.
func New(fs billy.Filesystem) *Writer {
	return &Writer{fs: fs, perm: defaultPerm}
}

// NewDir returns a writer over the OS directory dir. The bound OS filesystem
// supports Chmod, so written files get the writer's mode.
func NewDir(dir string) *Writer {
	return New(osfs.New(dir, osfs.WithBoundOS()))
}

type chmodder interface {
	Chmod(name string, mode os.FileMode) error
}

// Filesystem exposes the underlying filesystem.
func (w *Writer) Filesystem() billy.Filesystem { return w.fs }

// Path returns the location of name as seen from outside the filesystem.
func (w *Writer) Path(name string) string {
	return w.fs.Join(w.fs.Root(), name)
}

// WriteModule replaces bindings.go with the module's source.
func (w *Writer) WriteModule(m *bindgen.Module) (string, error) {
	if m == nil || len(m.Source) == 0 {
		return "", errors.ValidationError("refusing to write an empty binding module").Build()
	}
	if err := w.WriteFile(bindgen.FileName, m.Source); err != nil {
		return "", err
	}
	return w.Path(bindgen.FileName), nil
}

// WriteJSON marshals v with indentation and writes it atomically.
func (w *Writer) WriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WriteError("cannot encode "+name).
			WithCause(err).
			WithContext("path", w.Path(name)).
			Build()
	}
	return w.WriteFile(name, append(data, '\n'))
}

// WriteFile writes data to name through a temp file and a rename.
func (w *Writer) WriteFile(name string, data []byte) error {
	dest := w.Path(name)
	if err := w.writeAtomic(name, data); err != nil {
		return errors.WriteError("cannot write "+name).
			WithCause(err).
			WithContext("path", dest).
			Build()
	}
	slog.Debug("Wrote artifact", logfields.Path(dest), logfields.Count(len(data)))
	return nil
}

func (w *Writer) writeAtomic(name string, data []byte) (err error) {
	dir := path.Dir(name)
	if dir != "." {
		if err := w.fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	tmp, err := w.fs.TempFile(dir, "."+path.Base(name)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = w.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if ch, ok := w.fs.(chmodder); ok {
		if err = ch.Chmod(tmpName, w.perm); err != nil {
			return fmt.Errorf("chmod temp file: %w", err)
		}
	}
	if err = w.fs.Rename(tmpName, name); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
