package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/qrbatch/internal/style"
)

// isolate points QRBATCH_HOME at a fresh directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("QRBATCH_HOME", dir)
	t.Setenv("QRBATCH_PROJECT_DIR", "")
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)
	return dir
}

func TestNew_Defaults(t *testing.T) {
	home := isolate(t)

	cfg := New()
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.ConfigPath())
	assert.Equal(t, style.Default(), cfg.Style)
	assert.Equal(t, 1, cfg.Render.Concurrency)
	assert.Equal(t, "abort", cfg.Render.FailurePolicy)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	require.NoError(t, cfg.Validate())
}

func TestSaveLoad(t *testing.T) {
	home := isolate(t)

	cfg := New()
	cfg.Style.Color = "#1A4D8F"
	cfg.Style.Dots = style.DotRounded
	cfg.Render.Concurrency = 4
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded := New()
	assert.Equal(t, "#1A4D8F", loaded.Style.Color)
	assert.Equal(t, style.DotRounded, loaded.Style.Dots)
	assert.Equal(t, 4, loaded.Render.Concurrency)
	assert.Equal(t, "info", loaded.Logging.Level, "unset keys keep defaults")
}

func TestNew_IgnoresBrokenFile(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("style: [unterminated"), 0o600))

	cfg := New()
	assert.Equal(t, style.Default().Color, cfg.Style.Color)
}

func TestSave_NoPath(t *testing.T) {
	require.Error(t, Defaults().Save())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"future schema", func(c *Config) { c.Version = "2.0.0" }, "2.0.0"},
		{"bad color", func(c *Config) { c.Style.Color = "blue-ish" }, "style"},
		{"zero concurrency", func(c *Config) { c.Render.Concurrency = 0 }, "render.concurrency"},
		{"bad policy", func(c *Config) { c.Render.FailurePolicy = "retry" }, "render.failure_policy"},
		{"missing logo", func(c *Config) { c.Render.Logo = "/nonexistent/logo.png" }, "render.logo"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }, "max_upload_mb"},
		{"cache ttl ignored while disabled", func(c *Config) { c.Cache.TTLSeconds = 1 }, ""},
		{"cache ttl", func(c *Config) { c.Cache.Enabled, c.Cache.TTLSeconds = true, 1 }, "cache.ttl_seconds"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestGetSet(t *testing.T) {
	cfg := Defaults()

	v, err := cfg.Get("style.color")
	require.NoError(t, err)
	assert.Equal(t, "#000000", v)

	require.NoError(t, cfg.Set("style.color", "#ED6A33"))
	assert.Equal(t, "#ED6A33", cfg.Style.Color)

	require.NoError(t, cfg.Set("render.concurrency", "8"))
	assert.Equal(t, 8, cfg.Render.Concurrency)

	require.NoError(t, cfg.Set("output.plain", "true"))
	assert.True(t, cfg.Output.Plain)

	require.NoError(t, cfg.Set("logging.file", "/tmp/qrbatch.log"))
	assert.Equal(t, "/tmp/qrbatch.log", cfg.Logging.File)

	require.NoError(t, cfg.Set("cache.enabled", "true"))
	require.NoError(t, cfg.Set("cache.directory", "/tmp/qrcache"))
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/qrcache", cfg.Cache.Directory)

	section, err := cfg.Get("server")
	require.NoError(t, err)
	assert.Contains(t, section, "addr: 127.0.0.1:8080")
}

func TestSet_Errors(t *testing.T) {
	cfg := Defaults()

	err := cfg.Set("style.sparkle", "yes")
	require.ErrorIs(t, err, ErrUnknownKey)

	err = cfg.Set("nothing.here", "1")
	require.ErrorIs(t, err, ErrUnknownKey)

	err = cfg.Set("style", "x")
	require.Error(t, err)

	err = cfg.Set("render.concurrency", "0")
	require.Error(t, err)
	assert.Equal(t, 1, cfg.Render.Concurrency, "rejected values leave config unchanged")

	err = cfg.Set("render.concurrency", "many")
	require.Error(t, err)

	_, err = cfg.Get("style.sparkle")
	require.ErrorIs(t, err, ErrUnknownKey)
}

func TestList(t *testing.T) {
	entries, err := Defaults().List()
	require.NoError(t, err)

	keys := make(map[string]string, len(entries))
	for i, e := range entries {
		keys[e[0]] = e[1]
		if i > 0 {
			assert.Less(t, entries[i-1][0], e[0], "entries are sorted")
		}
	}
	assert.Equal(t, "png", keys["style.format"])
	assert.Equal(t, "abort", keys["render.failure_policy"])
	assert.Equal(t, "1.0.0", keys["version"])
}

func TestToLoggingConfig(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "json"}
	got := lc.ToLoggingConfig()
	assert.Equal(t, "stderr", got.Output)
	assert.Equal(t, "debug", got.Level)

	lc.File = "/var/log/qrbatch.log"
	got = lc.ToLoggingConfig()
	assert.Equal(t, "file", got.Output)
	assert.Equal(t, "/var/log/qrbatch.log", got.File)
}
