package testing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FileAssertions provides utilities for asserting file system state in tests
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{
		t:       t,
		baseDir: baseDir,
	}
}

// AssertFileExists validates that a file exists
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		fa.t.Errorf("Expected file to exist: %s", fullPath)
	}
	return fa
}

// AssertFileNotExists validates that a file does not exist
func (fa *FileAssertions) AssertFileNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Stat(fullPath); err == nil {
		fa.t.Errorf("Expected file to not exist: %s", fullPath)
	}
	return fa
}

// AssertFileContains validates that a file contains expected content
func (fa *FileAssertions) AssertFileContains(relativePath, expectedContent string) *FileAssertions {
	fa.t.Helper()
	content := fa.GetFileContent(relativePath)
	if !strings.Contains(content, expectedContent) {
		fa.t.Errorf("File %s does not contain expected content.\nExpected: %s\nActual: %s",
			relativePath, expectedContent, content)
	}
	return fa
}

// AssertNoTempFiles validates that no leftover temp file sits in the directory.
// Atomic writers stage into temp files; a leftover means a write was interrupted.
func (fa *FileAssertions) AssertNoTempFiles(relativePath string) *FileAssertions {
	fa.t.Helper()
	for _, name := range fa.ListFiles(relativePath) {
		if strings.Contains(name, ".tmp") {
			fa.t.Errorf("Unexpected temp file left behind: %s", name)
		}
	}
	return fa
}

// ListFiles returns the names of the regular files directly under the directory.
func (fa *FileAssertions) ListFiles(relativePath string) []string {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		fa.t.Errorf("Failed to list directory %s: %v", fullPath, err)
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	return files
}

// GetFileContent returns the content of a file as string
func (fa *FileAssertions) GetFileContent(relativePath string) string {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	// #nosec G304 - test utility, path is controlled by the test
	content, err := os.ReadFile(fullPath)
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", fullPath, err)
		return ""
	}
	return string(content)
}
