package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalConfig(t *testing.T) {
	isolate(t)

	cfg := GetGlobalConfig()
	assert.NotNil(t, cfg)
	assert.Equal(t, "png", string(cfg.Style.Format))

	// Subsequent calls return the same instance
	assert.Same(t, cfg, GetGlobalConfig())

	ResetGlobalConfigForTest()
	assert.NotSame(t, cfg, GetGlobalConfig())
}

func TestConfigGetters(t *testing.T) {
	isolate(t)
	cfg := GetGlobalConfig()
	cfg.Logging.Level = "debug"
	cfg.Logging.File = "/tmp/test.log"
	cfg.Output.Dir = "out"

	assert.Equal(t, "debug", GetLogLevel())
	assert.Equal(t, "/tmp/test.log", GetLogFile())
	assert.Equal(t, "out", GetOutputDir())
	assert.Equal(t, "debug", GetLoggingConfig().Level)

	t.Setenv("QRBATCH_OUTPUT_DIR", "/elsewhere")
	assert.Equal(t, "/elsewhere", GetOutputDir())
}

func TestEnsureConfigDir(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested", "home")
	t.Setenv("QRBATCH_HOME", home)

	require.NoError(t, EnsureConfigDir())

	stat, err := os.Stat(home)
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestEnsureLogDir(t *testing.T) {
	isolate(t)
	tmpDir := t.TempDir()
	GetGlobalConfig().Logging.File = filepath.Join(tmpDir, "logs", "subdir", "test.log")

	require.NoError(t, EnsureLogDir())

	stat, err := os.Stat(filepath.Join(tmpDir, "logs", "subdir"))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestEnsureLogDirError(t *testing.T) {
	isolate(t)

	// A regular file where a directory is expected.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	GetGlobalConfig().Logging.File = filepath.Join(blocker, "subdir", "test.log")

	assert.Error(t, EnsureLogDir())
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("QRBATCH_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".qrbatch"), dir)

	logDir, err := GetLogDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".qrbatch", "logs"), logDir)
}

func TestInitGlobalConfigWithProject(t *testing.T) {
	ctx := context.Background()

	t.Run("project_style_overrides_global", func(t *testing.T) {
		home := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(`style:
  color: "#1A4D8F"
  dots: dots
output:
  dir: global-out
`), 0o600))

		projectDir := filepath.Join(t.TempDir(), ".qrbatch")
		require.NoError(t, os.MkdirAll(projectDir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, "config.yaml"), []byte(`style:
  color: "#ED2B2A"
`), 0o600))

		InitGlobalConfigWithProject(ctx, projectDir)
		cfg := GetGlobalConfig()

		assert.Equal(t, "#ED2B2A", cfg.Style.Color)
		assert.Empty(t, string(cfg.Style.Dots), "style section is replaced wholesale")
		assert.Equal(t, "global-out", cfg.Output.Dir, "untouched sections come from global config")
	})

	t.Run("empty_project_dir_matches_New", func(t *testing.T) {
		isolate(t)

		InitGlobalConfigWithProject(ctx, "")
		assert.Equal(t, New(), GetGlobalConfig())
	})

	t.Run("broken_project_config_falls_back", func(t *testing.T) {
		isolate(t)
		projectDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, "config.yaml"), []byte("style: ["), 0o600))

		InitGlobalConfigWithProject(ctx, projectDir)
		assert.Equal(t, "#000000", GetGlobalConfig().Style.Color)
	})
}
