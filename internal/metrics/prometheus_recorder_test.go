package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("compile_native", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("compile_native", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.ObserveCompileUnitDuration("apt.c", 20*time.Millisecond, true)
	pr.SetCompileConcurrency(4)
	pr.SetEmittedDecls("function", 12)
	pr.IncSkippedDecl("function")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 8)
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome("failed")

	path := filepath.Join(t.TempDir(), "ayamsys.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `ayamsys_build_outcomes_total{outcome="failed"} 1`)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncBuildOutcome("success")
	pr.SetCompileConcurrency(1)
	require.NoError(t, pr.WriteTextfile("unused"))
}
