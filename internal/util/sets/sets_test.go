package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetBasics(t *testing.T) {
	s := New("a", "b")
	s.Add("c")
	require.True(t, s.Has("c"))
	s.Delete("a")
	require.False(t, s.Has("a"))
	require.Len(t, s, 2)
}

func TestSetEqualIgnoresOrder(t *testing.T) {
	require.True(t, New("x", "y", "z").Equal(New("z", "x", "y")))
	require.False(t, New("x", "y").Equal(New("x", "y", "z")))
	require.False(t, New("x", "q").Equal(New("x", "y")))
}

func TestSetMissing(t *testing.T) {
	require.ElementsMatch(t, []string{"c"}, New("a", "b", "c").Missing(New("a", "b")))
	require.Empty(t, New("a").Missing(New("a", "b")))
}
