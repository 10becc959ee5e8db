package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "info", "")
	fs.String("catalog", "", "")
	fs.Duration("exe-timeout", 0, "")
	fs.Bool("csv", false, "")
	fs.Bool("dry-run", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "rorb_config.yaml", cfg.Catalog)
	assert.Equal(t, "RORB_CMD.par", cfg.Files.Par)
	assert.Equal(t, "RUN_RORB.bat", cfg.Files.LaunchScript)
	assert.Equal(t, 30*time.Minute, cfg.ExeTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.File)
	assert.Equal(t, filepath.Join("/models/a", "templates"), cfg.TemplatesIn("/models/a"))
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "adapter.yaml", `
catalog: config/catalog.yaml
template_dir: /opt/templates
log_level: warn
exe_timeout: 5m
files:
  report: Talbingo.out
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "config/catalog.yaml"), cfg.Catalog)
		assert.Equal(t, filepath.Join(dir, "fews_config.yaml"), cfg.Conventions)
		assert.Equal(t, "/opt/templates", cfg.TemplatesIn("/models/a"))
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, 5*time.Minute, cfg.ExeTimeout)
		assert.Equal(t, "Talbingo.out", cfg.Files.Report)
		assert.Equal(t, "RORB_CMD.par", cfg.Files.Par)
		assert.Equal(t, path, cfg.File)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("RORBFEWS_LOG_LEVEL", "debug")
		t.Setenv("RORBFEWS_FILES__REPORT", "Other.out")
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "Other.out", cfg.Files.Report)
	})

	t.Run("changed flags over env", func(t *testing.T) {
		t.Setenv("RORBFEWS_LOG_LEVEL", "debug")
		fs := testFlags()
		require.NoError(t, fs.Parse([]string{"--log-level", "error", "--exe-timeout", "90s", "--dry-run"}))

		cfg, err := Load(path, fs)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.LogLevel)
		assert.Equal(t, 90*time.Second, cfg.ExeTimeout)
		// Unchanged flags keep lower layers.
		assert.Equal(t, filepath.Join(dir, "config/catalog.yaml"), cfg.Catalog)
		assert.False(t, cfg.CSV)
	})
}

func TestLoad_DefaultFileSearch(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, "rorb-fews.yaml", "csv: true\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.True(t, cfg.CSV)
	assert.Equal(t, "rorb-fews.yaml", cfg.File)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errSub  string
	}{
		{"bad level", "log_level: loud\n", `log_level "loud"`},
		{"bad format", "log_format: xml\n", `log_format "xml"`},
		{"negative state index", "state_index: -1\n", "state_index must not be negative"},
		{"zero timeout", "exe_timeout: 0s\n", "exe_timeout must be positive"},
		{"empty par", "files: {par: \"\"}\n", "files.par must not be empty"},
		{"bad yaml", "log_level: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			chdir(t, dir)
			path := writeFile(t, dir, "c.yaml", tt.content)
			_, err := Load(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.Error(t, err)
	})
}
