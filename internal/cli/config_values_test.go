package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/qrbatch/internal/config"
)

func TestConfigSetGet(t *testing.T) {
	home := setupCLITest(t)

	out, _, err := execute(t, "config", "set", "style.dots", "rounded")
	require.NoError(t, err)
	assert.Contains(t, out, "Set style.dots = rounded")

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "dots: rounded")

	config.ResetGlobalConfigForTest()
	out, _, err = execute(t, "config", "get", "style.dots")
	require.NoError(t, err)
	assert.Equal(t, "rounded", strings.TrimSpace(out))
}

func TestConfigSet_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"unknown key", "style.sparkle", "yes", "unknown configuration key"},
		{"bad enum", "style.dots", "hearts", "hearts"},
		{"bad concurrency", "render.concurrency", "0", "concurrency"},
		{"bad policy", "render.failure_policy", "retry", "failure policy"},
		{"section", "style", "x", "section"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := setupCLITest(t)

			_, _, err := execute(t, "config", "set", tt.key, tt.value)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NoFileExists(t, filepath.Join(home, "config.yaml"))
		})
	}
}

func TestConfigSet_ProjectFile(t *testing.T) {
	home := setupCLITest(t)
	project := t.TempDir()

	_, _, err := execute(t, "--project-dir", project, "config", "set", "render.concurrency", "4")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(project, ".qrbatch", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "concurrency: 4")
	assert.NoFileExists(t, filepath.Join(home, "config.yaml"))

	config.ResetGlobalConfigForTest()
	out, _, err := execute(t, "--project-dir", project, "config", "get", "render.concurrency")
	require.NoError(t, err)
	assert.Equal(t, "4", strings.TrimSpace(out))
}

func TestConfigList(t *testing.T) {
	setupCLITest(t)

	out, _, err := execute(t, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "style.color = #000000")
	assert.Contains(t, out, "render.failure_policy = abort")
	assert.Contains(t, out, "server.addr = 127.0.0.1:8080")
}

func TestConfigValidate(t *testing.T) {
	setupCLITest(t)

	out, _, err := execute(t, "config", "validate", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Failure policy: abort")
}

func TestConfigValidate_BadFile(t *testing.T) {
	home := setupCLITest(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("version: 1.0.0\nrender:\n  concurrency: 500\n"), 0o600))

	_, _, err := execute(t, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
