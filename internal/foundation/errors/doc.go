// Package errors provides the classified error primitives used across ayamsys.
//
// Every failure of the build/bind pipeline is fatal, so the interesting part of a
// ClassifiedError is its category: it tells the operator which artifact could not be
// produced and drives the process exit code.
//
// Categories:
//   - CategoryMissingPath: a source file, include directory or header does not exist
//   - CategoryCompilation: the native compiler or archiver rejected its input
//   - CategoryParse: the header parser could not resolve or parse the umbrella header
//   - CategoryWrite: a generated artifact could not be persisted
//   - CategoryConfig, CategoryValidation, CategoryInternal: everything around them
//
// Example usage:
//
//	err := errors.MissingPathError("translation unit not found").
//		WithContext("path", src).
//		WithCause(statErr).
//		Build()
package errors
