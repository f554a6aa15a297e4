package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/ayamsys/internal/layout"
	"git.home.luguber.info/inful/ayamsys/internal/sources"
)

// UmbrellaHeader is the file name of the fixture umbrella header.
const UmbrellaHeader = "wrapper.h"

// KernelTree is a minimal project root laid out like the vendored kernel. Every
// translation unit defines one probe function, ay_<stem>_probe, so archive symbol
// tests can tell the units apart.
type KernelTree struct {
	t      *testing.T
	Root   string
	Layout *layout.Layout
}

// NewKernelTree creates the tree under a fresh temp dir with every default
// translation unit and an umbrella header declaring the probes.
func NewKernelTree(t *testing.T) *KernelTree {
	t.Helper()
	root := t.TempDir()
	l := layout.Resolve(root)
	for _, dir := range l.IncludePaths() {
		if err := os.MkdirAll(dir, testDirPermissions); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	k := &KernelTree{t: t, Root: l.Root, Layout: l}

	var decls []string
	for _, name := range sources.TranslationUnits {
		probe := ProbeSymbol(name)
		k.WriteFile(filepath.Join(l.Nurbs, name), fmt.Sprintf("int %s(void) { return 1; }\n", probe))
		decls = append(decls, fmt.Sprintf("int %s(void);", probe))
	}
	k.WriteFile(k.Umbrella(), "#pragma once\n"+strings.Join(decls, "\n")+"\n")
	return k
}

// ProbeSymbol returns the function a fixture unit defines (apt.c -> ay_apt_probe).
func ProbeSymbol(unit string) string {
	return "ay_" + strings.TrimSuffix(unit, filepath.Ext(unit)) + "_probe"
}

// Umbrella returns the absolute path of the umbrella header.
func (k *KernelTree) Umbrella() string {
	return filepath.Join(k.Root, UmbrellaHeader)
}

// WriteFile writes content to path, creating parent directories. A relative path
// is taken relative to the project root.
func (k *KernelTree) WriteFile(path, content string) {
	k.t.Helper()
	if !filepath.IsAbs(path) {
		path = filepath.Join(k.Root, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), testDirPermissions); err != nil {
		k.t.Fatalf("create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), testFilePermissions); err != nil {
		k.t.Fatalf("write %s: %v", path, err)
	}
}

// RemoveUnit deletes a translation unit from the nurbs directory.
func (k *KernelTree) RemoveUnit(name string) {
	k.t.Helper()
	if err := os.Remove(filepath.Join(k.Layout.Nurbs, name)); err != nil {
		k.t.Fatalf("remove %s: %v", name, err)
	}
}
