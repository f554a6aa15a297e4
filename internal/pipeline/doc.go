// Package pipeline runs the build as an ordered list of stages:
// resolve_paths, select_sources, compile_native, generate_bindings and
// write_output. Stages run strictly in sequence and the first error aborts the
// build. Each run produces a BuildReport persisted next to the artifacts and,
// when successful, build signals on stdout.
package pipeline
