package toolchain

import (
	"runtime"
	"strings"
)

// Tools names the external executables used to build the archive.
type Tools struct {
	CC string
	AR string
	NM string
}

// DefaultTools returns the host defaults: cc, ar, nm.
func DefaultTools() Tools {
	return Tools{CC: "cc", AR: "ar", NM: "nm"}
}

// WithDefaults fills empty entries from DefaultTools.
func (t Tools) WithDefaults() Tools {
	d := DefaultTools()
	if strings.TrimSpace(t.CC) == "" {
		t.CC = d.CC
	}
	if strings.TrimSpace(t.AR) == "" {
		t.AR = d.AR
	}
	if strings.TrimSpace(t.NM) == "" {
		t.NM = d.NM
	}
	return t
}

// baseCFlags are applied before the profile flags on every compile: optimization
// level 3 and all warnings suppressed, plus position independent code and
// per-function sections so the linker can drop unused kernel code.
var baseCFlags = []string{"-O3", "-w", "-fPIC", "-ffunction-sections", "-fdata-sections"}

// BaseCFlags returns a copy of the fixed compile flags.
func BaseCFlags() []string {
	return append([]string(nil), baseCFlags...)
}

// LinkageDefined reports whether the host platform's runtime linkage is known.
// Only Linux is; elsewhere the archive is built but any extra runtime libraries
// must be configured explicitly.
func LinkageDefined() bool {
	return runtime.GOOS == "linux"
}
