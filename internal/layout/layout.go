// Package layout resolves the vendored kernel's directory layout and builds the
// single native profile (include paths + defines) shared by the compiler and the
// header parser.
package layout

import (
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/ayamsys/internal/util/sets"
)

// Vendor is the directory name of the vendored kernel, nested twice under the
// project root (<root>/ayam/ayam/src).
const Vendor = "ayam"

// Layout holds the absolute locations derived from the project root.
// No location is checked for existence here.
type Layout struct {
	Root          string
	Kernel        string
	Nurbs         string
	Togl          string
	AffineInclude string
}

// Resolve derives every kernel location from root by fixed concatenation.
// A relative root is made absolute against the working directory.
func Resolve(root string) *Layout {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	root = filepath.Clean(root)
	kernel := filepath.Join(root, Vendor, Vendor, "src")
	return &Layout{
		Root:          root,
		Kernel:        kernel,
		Nurbs:         filepath.Join(kernel, "nurbs"),
		Togl:          filepath.Join(kernel, "togl"),
		AffineInclude: filepath.Join(kernel, "affine", "include"),
	}
}

// IncludePaths returns the include search path in compiler order:
// kernel root, affine include dir, nurbs dir, togl dir.
func (l *Layout) IncludePaths() IncludePathSet {
	return IncludePathSet{l.Kernel, l.AffineInclude, l.Nurbs, l.Togl}
}

// IncludePathSet is an ordered list of include directories.
type IncludePathSet []string

// Flags renders one -I flag per directory, preserving order.
func (s IncludePathSet) Flags() []string {
	out := make([]string, 0, len(s))
	for _, dir := range s {
		out = append(out, "-I"+dir)
	}
	return out
}

// Equal compares two include sets ignoring order.
func (s IncludePathSet) Equal(other IncludePathSet) bool {
	return sets.New(s...).Equal(sets.New(other...))
}

// Clone returns an independent copy.
func (s IncludePathSet) Clone() IncludePathSet { return slices.Clone(s) }
