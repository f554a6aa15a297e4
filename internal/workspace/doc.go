// Package workspace provides the directory object files are compiled into.
//
// An ephemeral workspace (ayamsys-20251214-122336-*) lives under a temp base and
// is removed once the archive has been produced. A persistent one (for example
// <out>/obj) survives the build so object files can be inspected.
package workspace
