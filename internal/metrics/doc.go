// Package metrics provides build metrics for the ayamsys pipeline.
//
// Components receive a Recorder through dependency injection. The default is
// NoopRecorder, so callers never nil-check:
//
//	type Compiler struct {
//	    recorder metrics.Recorder
//	}
//
// When --metrics-file is given the CLI swaps in a PrometheusRecorder backed by a
// private registry and writes it with WriteTextfile after the build, in the
// node_exporter textfile collector format.
package metrics
