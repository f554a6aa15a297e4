package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/ayamsys/internal/foundation/errors"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvCC, EnvAR, EnvNM, EnvClang, EnvOutDir, EnvJobs} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileOverDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, `
project_root: kernel
out_dir: build/gen
package: ayamffi
toolchain:
  cc: clang
  jobs: 3
  runtime_link: [stdc++]
report:
  metrics_file: build/metrics.prom
`)

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	root := filepath.Join(dir, "kernel")
	require.Equal(t, root, cfg.ProjectRoot)
	require.Equal(t, filepath.Join(root, "build", "gen"), cfg.OutDir)
	require.Equal(t, filepath.Join(root, DefaultUmbrella), cfg.UmbrellaHeader)
	require.Equal(t, "ayamffi", cfg.Package)
	require.Equal(t, "ayan", cfg.ArchiveName)
	require.Equal(t, "clang", cfg.Toolchain.CC)
	require.Equal(t, "ar", cfg.Toolchain.AR)
	require.Equal(t, 3, cfg.Toolchain.Jobs)
	require.Equal(t, filepath.Join(root, "build", "metrics.prom"), cfg.Report.MetricsFile)

	opts := cfg.BindgenOptions()
	require.Equal(t, "ayamffi", opts.Package)
	require.Equal(t, []string{"stdc++"}, opts.RuntimeLink)
	require.Equal(t, cfg.OutDir, opts.OutDir)
	require.Equal(t, "clang", cfg.Tools().CC)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCC, "gcc-13")
	t.Setenv(EnvOutDir, "/abs/out")
	t.Setenv(EnvJobs, "7")
	path := writeConfig(t, t.TempDir(), "toolchain:\n  cc: clang\n  jobs: 2\n")

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	require.Equal(t, "gcc-13", cfg.Toolchain.CC)
	require.Equal(t, "/abs/out", cfg.OutDir)
	require.Equal(t, 7, cfg.Toolchain.Jobs)
}

func TestLoad_OverridesWin(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvJobs, "7")
	dir := t.TempDir()
	path := writeConfig(t, dir, "project_root: kernel\nout_dir: gen\n")
	jobs := 0

	cfg, err := Load(path, Overrides{ProjectRoot: "/elsewhere", Jobs: &jobs})
	require.NoError(t, err)
	require.Equal(t, "/elsewhere", cfg.ProjectRoot)
	require.Equal(t, "/elsewhere/gen", cfg.OutDir)
	require.Equal(t, "/elsewhere/"+DefaultUmbrella, cfg.UmbrellaHeader)
	require.Zero(t, cfg.Toolchain.Jobs)

	cfg, err = Load(path, Overrides{OutDir: "/tmp/ayam-out", Umbrella: "/inc/umbrella.h"})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "kernel"), cfg.ProjectRoot)
	require.Equal(t, "/tmp/ayam-out", cfg.OutDir)
	require.Equal(t, "/inc/umbrella.h", cfg.UmbrellaHeader)
	require.Equal(t, 7, cfg.Toolchain.Jobs)
}

func TestLoad_ExpandsEnvReferences(t *testing.T) {
	clearEnv(t)
	t.Setenv("AYAMSYS_TEST_PKG", "kernelffi")
	path := writeConfig(t, t.TempDir(), "package: ${AYAMSYS_TEST_PKG}\n")
	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	require.Equal(t, "kernelffi", cfg.Package)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"), Overrides{})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	_, err = Load(writeConfig(t, dir, "toolchain: [unclosed\n"), Overrides{})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	_, err = Load(writeConfig(t, dir, "package: not-a-package\n"), Overrides{})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	_, err = Load(writeConfig(t, dir, "toolchain:\n  jobs: -1\n"), Overrides{})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	t.Setenv(EnvJobs, "many")
	_, err = Load(writeConfig(t, dir, "package: ayam\n"), Overrides{})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoadOptional_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), DefaultFileName), Overrides{})
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.Equal(t, wd, cfg.ProjectRoot)
	require.Equal(t, filepath.Join(wd, DefaultOutDir), cfg.OutDir)
	require.Equal(t, "ayam", cfg.Package)
	require.Equal(t, "clang", cfg.Toolchain.Clang)
	require.Zero(t, cfg.Toolchain.Jobs)
	require.Empty(t, cfg.Toolchain.RuntimeLink)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.Resolve("/proj")
		return c
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"toolchain.cc":           func(c *Config) { c.Toolchain.CC = " " },
		"toolchain.clang":        func(c *Config) { c.Toolchain.Clang = "" },
		"toolchain.jobs":         func(c *Config) { c.Toolchain.Jobs = -2 },
		"package":                func(c *Config) { c.Package = "func" },
		"archive_name":           func(c *Config) { c.ArchiveName = "libayan.a" },
		"toolchain.runtime_link": func(c *Config) { c.Toolchain.RuntimeLink = []string{"std c++"} },
	}
	for key, mutate := range cases {
		t.Run(key, func(t *testing.T) {
			c := valid()
			mutate(c)
			err := c.Validate()
			require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
			ce, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			got, _ := ce.Context().GetString("key")
			require.Equal(t, key, got)
		})
	}
}

func TestLoadDotEnv_NeverOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AYAMSYS_TEST_A=from-env\nAYAMSYS_TEST_B=from-env\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("AYAMSYS_TEST_B=from-local\nAYAMSYS_TEST_C=from-local\n"), 0o600))

	t.Setenv("AYAMSYS_TEST_A", "preset")
	t.Setenv("AYAMSYS_TEST_B", "")
	t.Setenv("AYAMSYS_TEST_C", "")
	require.NoError(t, os.Unsetenv("AYAMSYS_TEST_B"))
	require.NoError(t, os.Unsetenv("AYAMSYS_TEST_C"))

	loaded, err := LoadDotEnv(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "preset", os.Getenv("AYAMSYS_TEST_A"))
	require.Equal(t, "from-env", os.Getenv("AYAMSYS_TEST_B"))
	require.Equal(t, "from-local", os.Getenv("AYAMSYS_TEST_C"))
}

func TestLoadDotEnv_NoFiles(t *testing.T) {
	loaded, err := LoadDotEnv(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestApplyEnv_IgnoresBlank(t *testing.T) {
	c := Default()
	env := map[string]string{EnvCC: "  ", EnvNM: "llvm-nm"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	require.NoError(t, ApplyEnv(c, lookup))
	require.Equal(t, "cc", c.Toolchain.CC)
	require.Equal(t, "llvm-nm", c.Toolchain.NM)
}

func TestInit(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, Init(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# ayamsys configuration.")
	require.Contains(t, string(data), "archive_name: ayan")

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	require.Equal(t, "ayam", cfg.Package)
	require.Equal(t, filepath.Join(filepath.Dir(path), "out", "ayamsys.prom"), cfg.Report.MetricsFile)

	err = Init(path, false)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.NoError(t, Init(path, true))
}
