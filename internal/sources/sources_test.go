package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/layout"
)

func writeUnits(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("int x_"+n[:1]+";\n"), 0o600))
	}
}

func TestSelect_ResolvesAgainstNurbsDir(t *testing.T) {
	l := layout.Resolve(t.TempDir())
	sel := Select(l)

	require.Len(t, sel, len(TranslationUnits))
	for i, u := range sel {
		require.Equal(t, TranslationUnits[i], u.Name)
		require.Equal(t, filepath.Join(l.Nurbs, u.Name), u.Path)
	}
}

func TestTranslationUnits_NoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range TranslationUnits {
		require.False(t, seen[n], "duplicate translation unit %s", n)
		require.Equal(t, ".c", filepath.Ext(n))
		seen[n] = true
	}
}

func TestVerify_AllPresent(t *testing.T) {
	l := layout.Resolve(t.TempDir())
	writeUnits(t, l.Nurbs, TranslationUnits...)
	require.NoError(t, Select(l).Verify())
}

func TestVerify_MisspelledUnitIsMissingPath(t *testing.T) {
	l := layout.Resolve(t.TempDir())
	writeUnits(t, l.Nurbs, TranslationUnits...)

	sel := SelectFrom(l.Nurbs, []string{"apt.c", "bevelt.c", "knts.c"})
	err := sel.Verify()
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryMissingPath))

	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	paths, _ := ce.Context().GetString("paths")
	require.Equal(t, filepath.Join(l.Nurbs, "knts.c"), paths)
}

func TestVerify_DirectoryIsNotAUnit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "apt.c"), 0o750))
	err := SelectFrom(dir, []string{"apt.c"}).Verify()
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryMissingPath))
}

func TestSelection_HelpersPreserveOrder(t *testing.T) {
	sel := SelectFrom("/n", []string{"a.c", "b.c", "c.c"})
	require.Equal(t, []string{"a.c", "b.c", "c.c"}, sel.Names())
	require.Equal(t, []string{"/n/a.c", "/n/b.c", "/n/c.c"}, sel.Paths())
	require.Equal(t, []string{"a.c", "c.c"}, sel.Without("b.c").Names())
	require.Len(t, sel, 3, "Without must not modify the receiver")
	require.Equal(t, "a.o", sel[0].Object())
}

// TestKernelTree_AllUnitsPresent checks the list against the vendored kernel when the
// checkout carries it.
func TestKernelTree_AllUnitsPresent(t *testing.T) {
	l := layout.Resolve(filepath.Join("..", ".."))
	if _, err := os.Stat(l.Nurbs); err != nil {
		t.Skipf("vendored kernel not present at %s", l.Nurbs)
	}
	require.NoError(t, Select(l).Verify())
}
