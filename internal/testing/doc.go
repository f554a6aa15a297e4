// Package testing contains fixture builders and assertion helpers shared by the
// package tests: a throwaway kernel tree laid out like the vendored one, and file
// assertions for the output directory.
package testing

const (
	// testDirPermissions is the permission mode for creating test directories.
	testDirPermissions = 0o750

	// testFilePermissions is the permission mode for creating test files.
	testFilePermissions = 0o600
)
