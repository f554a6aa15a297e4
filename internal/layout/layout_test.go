package layout

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve_FixedConcatenation(t *testing.T) {
	root := t.TempDir()
	l := Resolve(root)

	kernel := filepath.Join(root, "ayam", "ayam", "src")
	require.Equal(t, root, l.Root)
	require.Equal(t, kernel, l.Kernel)
	require.Equal(t, filepath.Join(kernel, "nurbs"), l.Nurbs)
	require.Equal(t, filepath.Join(kernel, "togl"), l.Togl)
	require.Equal(t, filepath.Join(kernel, "affine", "include"), l.AffineInclude)
}

func TestResolve_RelativeRootBecomesAbsolute(t *testing.T) {
	l := Resolve(".")
	require.True(t, filepath.IsAbs(l.Root))
}

func TestResolve_DoesNotRequireExistence(t *testing.T) {
	l := Resolve("/definitely/not/here")
	require.Equal(t, "/definitely/not/here/ayam/ayam/src/nurbs", filepath.ToSlash(l.Nurbs))
}

func TestIncludePaths_CompilerOrder(t *testing.T) {
	l := Resolve("/p")
	require.Equal(t, IncludePathSet{l.Kernel, l.AffineInclude, l.Nurbs, l.Togl}, l.IncludePaths())
}

func TestIncludePathSet_EqualIgnoresOrder(t *testing.T) {
	a := IncludePathSet{"/a", "/b", "/c"}
	require.True(t, a.Equal(IncludePathSet{"/c", "/a", "/b"}))
	require.False(t, a.Equal(IncludePathSet{"/a", "/b"}))
}

func TestProfile_FlagsAndCopies(t *testing.T) {
	l := Resolve("/p")
	p := NewProfile(l)

	flags := p.Flags()
	require.Equal(t, []string{
		"-I" + l.Kernel,
		"-I" + l.AffineInclude,
		"-I" + l.Nurbs,
		"-I" + l.Togl,
		"-DAYUSEAFFINE",
	}, flags)

	inc := p.IncludePaths()
	inc[0] = "/mutated"
	require.Equal(t, l.Kernel, p.IncludePaths()[0], "profile must not be mutable through accessors")
}

func TestFlagExtraction(t *testing.T) {
	args := []string{"-c", "-O3", "-I/a", "-I", "/b", "-DAYUSEAFFINE", "-DX=1", "x.c"}
	require.Equal(t, IncludePathSet{"/a", "/b"}, IncludesFromFlags(args))
	require.Equal(t, []string{"AYUSEAFFINE", "X=1"}, DefinesFromFlags(args))
}

func TestDefineFlag(t *testing.T) {
	require.Equal(t, "-DAYUSEAFFINE", Define{Name: "AYUSEAFFINE"}.Flag())
	require.Equal(t, "-DLEVEL=3", Define{Name: "LEVEL", Value: "3"}.Flag())
}
