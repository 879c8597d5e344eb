package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"tidewave/internal/util"
)

type Config struct {
	Daemon Daemon `json:"daemon"`
	UI     UI     `json:"ui"`
	Log    Log    `json:"log"`
}

type Daemon struct {
	// Websocket endpoint of the playback daemon's bridge.
	URL string `json:"url"`

	// Dial timeout in seconds. Commands themselves carry no client-side
	// timeout; this only bounds the initial connect.
	DialTimeoutSec int `json:"dial_timeout_seconds"`
}

type UI struct {
	Theme string `json:"theme"`
}

type Log struct {
	// Level for the bridge logger: debug, info, warn or error.
	Level string `json:"level"`
}

func Default() Config {
	return Config{
		Daemon: Daemon{
			URL:            "ws://127.0.0.1:7220/bridge",
			DialTimeoutSec: int(util.DefaultDialTimeout / time.Second),
		},
		UI: UI{
			Theme: "dark",
		},
		Log: Log{
			Level: "info",
		},
	}
}

func (c *Config) Validate() error {
	raw := strings.TrimSpace(c.Daemon.URL)
	if raw == "" {
		return errors.New("daemon.url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("daemon.url: %v", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.New("daemon.url scheme must be ws or wss")
	}
	if u.Host == "" {
		return errors.New("daemon.url is missing a host")
	}

	if c.Daemon.DialTimeoutSec < 1 || c.Daemon.DialTimeoutSec > 120 {
		return errors.New("daemon.dial_timeout_seconds must be 1..120")
	}

	switch c.UI.Theme {
	case "", "light", "dark":
	default:
		return errors.New("ui.theme must be light or dark")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New("log.level must be debug, info, warn or error")
	}

	return nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	// Strip UTF-8 BOM if present (common when editing JSON on Windows).
	b = stripBOM(b)

	// Start from defaults so missing JSON fields remain initialized.
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadPartial reads a config file without validation. Useful for reading
// individual fields (like ui.theme) when full validation may fail.
func LoadPartial(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	b = stripBOM(b)

	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// stripBOM removes a UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	return util.WriteJSONFile(path, cfg)
}

// Ensure loads config if it exists; otherwise creates a default config file.
// Returns (cfg, createdNew, err).
func Ensure(path string) (Config, bool, error) {
	if _, err := os.Stat(path); err == nil {
		cfg, err := Load(path)
		return cfg, false, err
	} else if !os.IsNotExist(err) {
		return Config{}, false, err
	}

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		return Config{}, false, fmt.Errorf("create default config: %w", err)
	}
	return cfg, true, nil
}
