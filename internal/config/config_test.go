package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	qerrors "github.com/yescode/quotaline/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Enabled)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, SecondaryBalance, cfg.Display.Secondary)
	assert.Equal(t, 60*time.Second, cfg.Watch.Interval)
	assert.Empty(t, cfg.Watch.Listen)
	assert.Equal(t, "settings.json", filepath.Base(cfg.Credentials.SettingsPath))
	assert.Equal(t, "api_key", filepath.Base(cfg.Credentials.KeyFile))
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid default",
			mutate: func(*Config) {},
		},
		{
			name:   "weekly secondary",
			mutate: func(c *Config) { c.Display.Secondary = SecondaryWeekly },
		},
		{
			name:    "unknown secondary",
			mutate:  func(c *Config) { c.Display.Secondary = "monthly" },
			wantErr: true,
			errMsg:  "display",
		},
		{
			name:    "interval too short",
			mutate:  func(c *Config) { c.Watch.Interval = 10 * time.Millisecond },
			wantErr: true,
			errMsg:  "watch",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: true,
			errMsg:  "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("partial document keeps defaults", func(t *testing.T) {
		cfg, err := Parse([]byte("debug: true\ndisplay:\n  secondary: weekly\n"))
		require.NoError(t, err)
		assert.True(t, cfg.Enabled)
		assert.True(t, cfg.Debug)
		assert.Equal(t, SecondaryWeekly, cfg.Display.Secondary)
		assert.Equal(t, 60*time.Second, cfg.Watch.Interval)
	})

	t.Run("full document", func(t *testing.T) {
		cfg, err := Parse([]byte(`
enabled: false
log_level: info
credentials:
  settings_path: /tmp/settings.json
  key_file: /tmp/api_key
transport:
  utls: true
watch:
  interval: 30s
  listen: 127.0.0.1:9464
`))
		require.NoError(t, err)
		assert.False(t, cfg.Enabled)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "/tmp/settings.json", cfg.Credentials.SettingsPath)
		assert.Equal(t, "/tmp/api_key", cfg.Credentials.KeyFile)
		assert.True(t, cfg.Transport.UTLS)
		assert.Equal(t, 30*time.Second, cfg.Watch.Interval)
		assert.Equal(t, "127.0.0.1:9464", cfg.Watch.Listen)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("enabled: [unclosed"))
		var parseErr *qerrors.ErrConfigParse
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Parse([]byte("display:\n  secondary: nope\n"))
		var validationErr *qerrors.ErrConfigValidation
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestMustParsePanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustParse([]byte("log_level: loud")) })
	assert.NotPanics(t, func() { MustParse([]byte("")) })
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quota.yaml")

	t.Run("missing file", func(t *testing.T) {
		loader := NewLoader(path)
		_, err := loader.Load()
		var notFound *qerrors.ErrConfigNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, path, notFound.Path)

		cfg, err := loader.LoadOrDefault()
		require.NoError(t, err)
		assert.True(t, cfg.Enabled)
		assert.Same(t, cfg, loader.Get())
	})

	t.Run("env substitution", func(t *testing.T) {
		t.Setenv("QUOTALINE_TEST_KEYFILE", "/run/secrets/yescode")
		require.NoError(t, os.WriteFile(path, []byte("credentials:\n  key_file: ${QUOTALINE_TEST_KEYFILE}\n"), 0o600))

		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.Equal(t, "/run/secrets/yescode", cfg.Credentials.KeyFile)
	})

	t.Run("reload notifies", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("enabled: false\n"), 0o600))
		loader := NewLoader(path)

		var got *Config
		loader.SetOnChange(func(c *Config) { got = c })
		cfg, err := loader.Reload()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Same(t, cfg, got)
		assert.False(t, got.Enabled)
	})

	t.Run("broken file is an error", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("watch: {interval: nope}"), 0o600))
		_, err := NewLoader(path).LoadOrDefault()
		require.Error(t, err)
	})
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/explicit.yaml", ResolvePath("/explicit.yaml"))

	t.Setenv(PathEnvVar, "/from/env.yaml")
	assert.Equal(t, "/from/env.yaml", ResolvePath(""))

	t.Setenv(PathEnvVar, "")
	assert.Equal(t, DefaultPath(), ResolvePath(""))
}

func TestDiagnosticsEnabled(t *testing.T) {
	cfg := Default()
	t.Setenv(DebugEnvVar, "")
	os.Unsetenv(DebugEnvVar)
	assert.False(t, cfg.DiagnosticsEnabled())

	t.Setenv(DebugEnvVar, "")
	assert.True(t, cfg.DiagnosticsEnabled(), "presence alone enables diagnostics")

	os.Unsetenv(DebugEnvVar)
	cfg.Debug = true
	assert.True(t, cfg.DiagnosticsEnabled())
}

func TestLoaderWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quota.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enabled: true\n"), 0o600))

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)

	changed := make(chan *Config, 8)
	loader.SetOnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, loader.Watch(ctx, nil))

	require.NoError(t, os.WriteFile(path, []byte("enabled: false\n"), 0o600))

	// A truncating write may surface an intermediate empty read first.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if !cfg.Enabled {
				return
			}
		case <-deadline:
			t.Fatal("expected reload after file change")
		}
	}
}
