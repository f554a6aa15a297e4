package toolchain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultArchiveName is the link name of the compiled kernel subset.
const DefaultArchiveName = "ayan"

// Archive is the produced static library.
type Archive struct {
	Name    string   // link name, without lib prefix and .a suffix
	Path    string   // absolute path of lib<name>.a
	Objects []string // member object names in compile order
}

// FileName returns lib<name>.a.
func FileName(name string) string {
	return "lib" + name + ".a"
}

// ValidateName rejects names that cannot be used as a link name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("archive name is empty")
	}
	if strings.ContainsAny(name, `/\ `) || name != filepath.Base(name) {
		return fmt.Errorf("archive name %q must be a bare library name", name)
	}
	if strings.HasPrefix(name, "lib") || strings.HasSuffix(name, ".a") {
		return fmt.Errorf("archive name %q must not carry the lib prefix or .a suffix", name)
	}
	return nil
}
