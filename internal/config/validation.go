package config

import (
	"strings"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen"
	"git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/toolchain"
)

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	tools := []struct{ key, value string }{
		{"toolchain.cc", c.Toolchain.CC},
		{"toolchain.ar", c.Toolchain.AR},
		{"toolchain.nm", c.Toolchain.NM},
		{"toolchain.clang", c.Toolchain.Clang},
	}
	for _, tool := range tools {
		if strings.TrimSpace(tool.value) == "" {
			return invalid(tool.key, "tool name must not be empty", tool.value)
		}
	}
	if c.Toolchain.Jobs < 0 {
		return invalid("toolchain.jobs", "jobs must not be negative", c.Toolchain.Jobs)
	}
	if !bindgen.ValidPackageName(c.Package) {
		return invalid("package", "not a valid Go package identifier", c.Package)
	}
	if err := toolchain.ValidateName(c.ArchiveName); err != nil {
		return invalid("archive_name", err.Error(), c.ArchiveName)
	}
	if c.ProjectRoot == "" {
		return invalid("project_root", "must not be empty", c.ProjectRoot)
	}
	if c.OutDir == "" {
		return invalid("out_dir", "must not be empty", c.OutDir)
	}
	if c.UmbrellaHeader == "" {
		return invalid("umbrella_header", "must not be empty", c.UmbrellaHeader)
	}
	for _, lib := range c.Toolchain.RuntimeLink {
		if strings.TrimSpace(lib) == "" || strings.ContainsAny(lib, " \t") {
			return invalid("toolchain.runtime_link", "library names must be single words", lib)
		}
	}
	return nil
}

func invalid(key, msg string, value any) error {
	return errors.ValidationError("invalid configuration: "+key+": "+msg).
		WithContext("key", key).
		WithContext("value", value).
		Build()
}
