package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewave/internal/util"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "ws://127.0.0.1:7220/bridge", cfg.Daemon.URL)
	assert.Equal(t, int(util.DefaultDialTimeout/time.Second), cfg.Daemon.DialTimeoutSec)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := func(mutate func(*Config)) *Config {
		cfg := Default()
		mutate(&cfg)
		return &cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"defaults", valid(func(*Config) {}), false},
		{"wss scheme", valid(func(c *Config) { c.Daemon.URL = "wss://daemon.local/bridge" }), false},
		{"light theme", valid(func(c *Config) { c.UI.Theme = "light" }), false},
		{"empty theme", valid(func(c *Config) { c.UI.Theme = "" }), false},
		{"debug level", valid(func(c *Config) { c.Log.Level = "debug" }), false},
		{"empty level", valid(func(c *Config) { c.Log.Level = "" }), false},
		{"empty url", valid(func(c *Config) { c.Daemon.URL = "" }), true},
		{"whitespace url", valid(func(c *Config) { c.Daemon.URL = "   " }), true},
		{"http scheme", valid(func(c *Config) { c.Daemon.URL = "http://127.0.0.1:7220" }), true},
		{"missing host", valid(func(c *Config) { c.Daemon.URL = "ws://" }), true},
		{"timeout too low", valid(func(c *Config) { c.Daemon.DialTimeoutSec = 0 }), true},
		{"timeout too high", valid(func(c *Config) { c.Daemon.DialTimeoutSec = 121 }), true},
		{"unknown theme", valid(func(c *Config) { c.UI.Theme = "solarized" }), true},
		{"unknown level", valid(func(c *Config) { c.Log.Level = "trace" }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidewave.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"daemon":{"url":"ws://10.0.0.2:7220/bridge","dial_timeout_seconds":10}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://10.0.0.2:7220/bridge", cfg.Daemon.URL)
	assert.Equal(t, 10, cfg.Daemon.DialTimeoutSec)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidewave.json")
	bom := []byte{0xEF, 0xBB, 0xBF}
	require.NoError(t, os.WriteFile(path, append(bom, []byte(`{"ui":{"theme":"light"}}`)...), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidewave.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"daemon":{"url":"http://wrong"}}`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadPartialSkipsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidewave.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"daemon":{"url":"not a ws url"},"ui":{"theme":"light"}}`), 0o644))

	cfg, err := LoadPartial(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Daemon.DialTimeoutSec = 0

	err := Save(filepath.Join(t.TempDir(), "tidewave.json"), cfg)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tidewave.json")
	cfg := Default()
	cfg.UI.Theme = "light"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnsure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidewave.json")

	cfg, created, err := Ensure(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, path)

	// Second call finds the existing file.
	cfg, created, err = Ensure(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, Default(), cfg)
}
