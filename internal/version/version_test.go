package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildInfoInitialized(t *testing.T) {
	require.NotEmpty(t, Version)
	require.NotEmpty(t, BuildTime)
	require.NotEmpty(t, GitCommit)
}

func TestString(t *testing.T) {
	s := String()
	require.True(t, strings.HasPrefix(s, "ayamsys "+Version), s)
	require.Contains(t, s, "commit "+GitCommit)
}
