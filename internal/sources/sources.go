// Package sources holds the hand-curated list of kernel translation units that make
// up the compiled NURBS subset. Adding or removing a capability means editing
// TranslationUnits; nothing is discovered from the directory.
package sources

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/layout"
)

// TranslationUnits is the compiled subset of the kernel's nurbs module.
var TranslationUnits = []string{
	"apt.c",
	"bevelt.c",
	"capt.c",
	"ict.c",
	"ipt.c",
	"knots.c",
	"nb.c",
	"nct.c",
	"npt.c",
	"pmt.c",
	"stess.c",
	"tess.c",
}

var errNotRegular = errors.New("not a regular file")

// Unit is one translation unit resolved against the nurbs directory.
type Unit struct {
	Name string // file name as listed
	Path string // absolute path
}

// Object returns the object file name for the unit (apt.c -> apt.o).
func (u Unit) Object() string {
	return strings.TrimSuffix(u.Name, filepath.Ext(u.Name)) + ".o"
}

// Selection is the ordered, resolved translation unit list.
type Selection []Unit

// Select resolves the default list against the layout's nurbs directory.
func Select(l *layout.Layout) Selection {
	return SelectFrom(l.Nurbs, TranslationUnits)
}

// SelectFrom resolves names against dir, preserving order.
func SelectFrom(dir string, names []string) Selection {
	sel := make(Selection, 0, len(names))
	for _, n := range names {
		sel = append(sel, Unit{Name: n, Path: filepath.Join(dir, n)})
	}
	return sel
}

// Paths returns the absolute source paths in order.
func (s Selection) Paths() []string {
	out := make([]string, 0, len(s))
	for _, u := range s {
		out = append(out, u.Path)
	}
	return out
}

// Names returns the listed file names in order.
func (s Selection) Names() []string {
	out := make([]string, 0, len(s))
	for _, u := range s {
		out = append(out, u.Name)
	}
	return out
}

// Without returns a copy of the selection minus the named units.
func (s Selection) Without(names ...string) Selection {
	return slices.DeleteFunc(slices.Clone(s), func(u Unit) bool {
		return slices.Contains(names, u.Name)
	})
}

// Verify checks that every unit exists as a regular file. All missing entries are
// reported together in one MissingPathError.
func (s Selection) Verify() error {
	var missing []string
	var firstErr error
	for _, u := range s {
		info, err := os.Stat(u.Path)
		if err == nil {
			if info.Mode().IsRegular() {
				continue
			}
			err = errNotRegular
		}
		missing = append(missing, u.Path)
		if firstErr == nil {
			firstErr = err
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return ferrors.MissingPathError("translation unit not found").
		WithContext("paths", strings.Join(missing, ",")).
		WithContext("count", len(missing)).
		WithCause(firstErr).
		Build()
}
