package config

import (
	stdErrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
)

// Environment variables that override the file.
const (
	EnvCC     = "CC"
	EnvAR     = "AR"
	EnvNM     = "NM"
	EnvClang  = "CLANG"
	EnvOutDir = "OUT_DIR"
	EnvJobs   = "AYAMSYS_JOBS"
)

var envFiles = []string{".env", ".env.local"}

// LoadDotEnv loads .env and .env.local from dir into the process environment.
// Variables already set are never overridden, so .env wins over .env.local for
// keys present in both. Missing files are skipped. It returns the files loaded.
func LoadDotEnv(dir string) ([]string, error) {
	var loaded []string
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if stdErrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, errors.ConfigError("cannot stat env file").WithContext("path", path).WithCause(err).Build()
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, errors.ConfigError("cannot load env file").WithContext("path", path).WithCause(err).Build()
		}
		slog.Debug("Loaded environment file", logfields.Path(path))
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides toolchain and output settings from the environment.
// Empty values are ignored.
func ApplyEnv(c *Config, lookup LookupFunc) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvCC, &c.Toolchain.CC)
	set(EnvAR, &c.Toolchain.AR)
	set(EnvNM, &c.Toolchain.NM)
	set(EnvClang, &c.Toolchain.Clang)
	set(EnvOutDir, &c.OutDir)

	if v, ok := lookup(EnvJobs); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.ConfigError("invalid "+EnvJobs).
				WithContext("value", v).
				WithCause(err).
				Build()
		}
		c.Toolchain.Jobs = n
	}
	return nil
}
