// Package config loads the optional ayamsys.yaml, .env files and environment
// overrides into one Config. Precedence: CLI flags (applied by the caller) >
// environment > YAML file > defaults.
package config

import (
	stdErrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/ayamsys/internal/bindgen"
	"git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/toolchain"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "ayamsys.yaml"

// Config represents the application configuration.
type Config struct {
	ProjectRoot    string          `yaml:"project_root"`
	OutDir         string          `yaml:"out_dir"`
	Package        string          `yaml:"package"`
	UmbrellaHeader string          `yaml:"umbrella_header"`
	ArchiveName    string          `yaml:"archive_name"`
	Toolchain      ToolchainConfig `yaml:"toolchain"`
	Report         ReportConfig    `yaml:"report,omitempty"`
}

// ToolchainConfig names the external tools and compile parallelism.
type ToolchainConfig struct {
	CC    string `yaml:"cc"`
	AR    string `yaml:"ar"`
	NM    string `yaml:"nm"`
	Clang string `yaml:"clang"`
	Jobs  int    `yaml:"jobs"` // 0 means one per CPU
	// RuntimeLink adds -l<lib> entries to the generated LDFLAGS. Nothing is
	// inferred per platform.
	RuntimeLink []string `yaml:"runtime_link,omitempty"`
}

// ReportConfig controls build report side outputs.
type ReportConfig struct {
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// Overrides carry command line values. They take precedence over the
// environment and the file; relative paths resolve against the working
// directory.
type Overrides struct {
	ProjectRoot string
	OutDir      string
	Umbrella    string
	Jobs        *int
	MetricsFile string
}

func (o Overrides) apply(c *Config) {
	if o.ProjectRoot != "" {
		c.ProjectRoot = absAgainst(".", o.ProjectRoot)
	}
	if o.OutDir != "" {
		c.OutDir = absAgainst(".", o.OutDir)
	}
	if o.Umbrella != "" {
		c.UmbrellaHeader = absAgainst(".", o.Umbrella)
	}
	if o.Jobs != nil {
		c.Toolchain.Jobs = *o.Jobs
	}
	if o.MetricsFile != "" {
		c.Report.MetricsFile = absAgainst(".", o.MetricsFile)
	}
}

// Load reads the YAML file at path on top of the defaults, then applies the
// environment and ov. Relative paths in the file resolve against the file's
// directory.
func Load(path string, ov Overrides) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", path).
				WithCause(err).
				Build()
		}
		return nil, errors.ConfigError("cannot read configuration file").
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, errors.ConfigError("cannot parse configuration file").
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	return finish(cfg, filepath.Dir(path), ov)
}

// LoadOptional behaves like Load but falls back to defaults when path does not
// exist. Relative paths then resolve against the working directory.
func LoadOptional(path string, ov Overrides) (*Config, error) {
	if _, err := os.Stat(path); err == nil {
		return Load(path, ov)
	}
	return finish(Default(), ".", ov)
}

func finish(cfg *Config, baseDir string, ov Overrides) (*Config, error) {
	cfg.applyDefaults()
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	ov.apply(cfg)
	cfg.Resolve(baseDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve makes ProjectRoot absolute against baseDir, and OutDir,
// UmbrellaHeader and the metrics file absolute against ProjectRoot.
func (c *Config) Resolve(baseDir string) {
	c.ProjectRoot = absAgainst(baseDir, c.ProjectRoot)
	c.OutDir = absAgainst(c.ProjectRoot, c.OutDir)
	c.UmbrellaHeader = absAgainst(c.ProjectRoot, c.UmbrellaHeader)
	c.Report.MetricsFile = absAgainst(c.ProjectRoot, c.Report.MetricsFile)
}

func absAgainst(base, p string) string {
	if p == "" {
		return p
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Tools returns the archive toolchain.
func (c *Config) Tools() toolchain.Tools {
	return toolchain.Tools{CC: c.Toolchain.CC, AR: c.Toolchain.AR, NM: c.Toolchain.NM}.WithDefaults()
}

// BindgenOptions returns the generation options for this configuration.
func (c *Config) BindgenOptions() bindgen.Options {
	opts := bindgen.DefaultOptions(c.OutDir, c.UmbrellaHeader, c.ArchiveName)
	opts.Package = c.Package
	opts.RuntimeLink = append([]string(nil), c.Toolchain.RuntimeLink...)
	return opts
}
