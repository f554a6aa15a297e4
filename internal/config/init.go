package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
)

const exampleHeader = `# ayamsys configuration.
# Every key is optional. Environment variables CC, AR, NM, CLANG, OUT_DIR and
# AYAMSYS_JOBS override the values below; command line flags override both.
`

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Default()
	example.Report.MetricsFile = "out/ayamsys.prom"

	var buf bytes.Buffer
	buf.WriteString(exampleHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(example); err != nil {
		return errors.InternalError("failed to marshal example config").WithCause(err).Build()
	}
	if err := enc.Close(); err != nil {
		return errors.InternalError("failed to marshal example config").WithCause(err).Build()
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return errors.WriteError("failed to write config file").
			WithContext("path", configPath).
			WithCause(err).
			Build()
	}
	return nil
}
