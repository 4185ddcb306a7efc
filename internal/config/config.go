// Package config provides configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/stocktray/stocktray/internal/colors"
)

// File permission constants
const (
	// FileModeDir is the permission for directories (rwxr-xr-x)
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for data files (rw-r--r--)
	FileModeFile os.FileMode = 0644
)

// Default values applied when the config file or a key is absent.
const (
	DefaultPageSize         = 20
	DefaultHandshakeTimeout = 15 * time.Second
	DefaultRequestTimeout   = 10 * time.Second
	DefaultHeartbeat        = 30 * time.Second
)

// Config holds the resolved stocktray configuration.
type Config struct {
	// ServerURL is the base URL of the REST notification store.
	ServerURL string `toml:"server_url"`
	// ChannelURL is the websocket endpoint of the realtime channel.
	// Derived from ServerURL when empty.
	ChannelURL string `toml:"channel_url"`
	// PageSize is the snapshot page size for notification fetches.
	PageSize int `toml:"page_size"`
	// HandshakeTimeoutSeconds bounds the channel connect handshake.
	HandshakeTimeoutSeconds int `toml:"handshake_timeout_seconds"`
	// RequestTimeoutSeconds bounds each REST request.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
	// HeartbeatSeconds is the interval between channel pings.
	HeartbeatSeconds int `toml:"heartbeat_seconds"`
	// AlertsEnabled controls desktop alert side effects.
	AlertsEnabled bool `toml:"alerts_enabled"`
	// CachePath overrides the sqlite cache location.
	CachePath string `toml:"cache_path"`
	// LoggingEnabled activates structured file logging.
	LoggingEnabled bool `toml:"logging_enabled"`
	// LoggingLevel is the minimum level written to the log file.
	LoggingLevel string `toml:"logging_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PageSize:                DefaultPageSize,
		HandshakeTimeoutSeconds: int(DefaultHandshakeTimeout.Seconds()),
		RequestTimeoutSeconds:   int(DefaultRequestTimeout.Seconds()),
		HeartbeatSeconds:        int(DefaultHeartbeat.Seconds()),
		AlertsEnabled:           true,
		LoggingEnabled:          false,
		LoggingLevel:            "info",
	}
}

// Dir returns the stocktray configuration directory, honoring
// XDG_CONFIG_HOME and falling back to ~/.config.
func Dir() (string, error) {
	if dir := os.Getenv("STOCKTRAY_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "stocktray"), nil
}

// Path returns the full path of the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration file, applies environment overrides and
// validates the result. A missing file is not an error; defaults apply.
func Load() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	cfg.normalize()
	return cfg, nil
}

// applyEnvOverrides lets the environment win over the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STOCKTRAY_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("STOCKTRAY_CHANNEL_URL"); v != "" {
		cfg.ChannelURL = v
	}
	if v := os.Getenv("STOCKTRAY_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PageSize = n
		} else {
			colors.Warning(fmt.Sprintf("invalid STOCKTRAY_PAGE_SIZE value '%s': must be an integer", v))
		}
	}
	if v := os.Getenv("STOCKTRAY_ALERTS"); v != "" {
		cfg.AlertsEnabled = v == "true" || v == "1"
	}
}

// normalize clamps out-of-range values back to defaults, warning once per key.
func (c *Config) normalize() {
	if c.PageSize <= 0 || c.PageSize > 100 {
		colors.Warning(fmt.Sprintf("invalid page_size value '%d': must be between 1 and 100, using default: %d", c.PageSize, DefaultPageSize))
		c.PageSize = DefaultPageSize
	}
	if c.HandshakeTimeoutSeconds <= 0 {
		c.HandshakeTimeoutSeconds = int(DefaultHandshakeTimeout.Seconds())
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = int(DefaultRequestTimeout.Seconds())
	}
	if c.HeartbeatSeconds <= 0 {
		c.HeartbeatSeconds = int(DefaultHeartbeat.Seconds())
	}
	switch c.LoggingLevel {
	case "debug", "info", "warn", "error":
	default:
		if c.LoggingLevel != "" {
			colors.Warning(fmt.Sprintf("invalid logging_level value '%s': must be one of: debug, info, warn, error; using default: info", c.LoggingLevel))
		}
		c.LoggingLevel = "info"
	}
}

// HandshakeTimeout returns the handshake bound as a duration.
func (c Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeoutSeconds) * time.Second
}

// RequestTimeout returns the REST request bound as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Heartbeat returns the channel ping interval as a duration.
func (c Config) Heartbeat() time.Duration {
	return time.Duration(c.HeartbeatSeconds) * time.Second
}

// Save writes the configuration to the config file, creating the
// directory when needed.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, FileModeDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, data, FileModeFile); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
