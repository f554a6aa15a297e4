package config

import (
	"git.home.luguber.info/inful/ayamsys/internal/bindgen"
	"git.home.luguber.info/inful/ayamsys/internal/toolchain"
)

// Default values.
const (
	DefaultProjectRoot = "."
	DefaultOutDir      = "out"
	DefaultUmbrella    = "wrapper.h"
	DefaultClang       = "clang"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	tools := toolchain.DefaultTools()
	return &Config{
		ProjectRoot:    DefaultProjectRoot,
		OutDir:         DefaultOutDir,
		Package:        bindgen.DefaultPackage,
		UmbrellaHeader: DefaultUmbrella,
		ArchiveName:    toolchain.DefaultArchiveName,
		Toolchain: ToolchainConfig{
			CC:    tools.CC,
			AR:    tools.AR,
			NM:    tools.NM,
			Clang: DefaultClang,
		},
	}
}

// applyDefaults fills fields a YAML file left empty.
func (c *Config) applyDefaults() {
	d := Default()
	if c.ProjectRoot == "" {
		c.ProjectRoot = d.ProjectRoot
	}
	if c.OutDir == "" {
		c.OutDir = d.OutDir
	}
	if c.Package == "" {
		c.Package = d.Package
	}
	if c.UmbrellaHeader == "" {
		c.UmbrellaHeader = d.UmbrellaHeader
	}
	if c.ArchiveName == "" {
		c.ArchiveName = d.ArchiveName
	}
	if c.Toolchain.CC == "" {
		c.Toolchain.CC = d.Toolchain.CC
	}
	if c.Toolchain.AR == "" {
		c.Toolchain.AR = d.Toolchain.AR
	}
	if c.Toolchain.NM == "" {
		c.Toolchain.NM = d.Toolchain.NM
	}
	if c.Toolchain.Clang == "" {
		c.Toolchain.Clang = d.Toolchain.Clang
	}
}
