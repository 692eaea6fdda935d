// Package config loads and validates the flowforge configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Gateway modes.
const (
	GatewayModeBolt   = "bolt"
	GatewayModeMemory = "memory"
)

// Config is the main configuration structure.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Gateway GatewayConfig `yaml:"gateway"`
	Editor  EditorConfig  `yaml:"editor"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"` // Default: :8080
	APIKey     string `yaml:"api_key"`     // Empty disables authentication
	Version    string `yaml:"-"`
}

// StorageConfig contains paths for the durable stores.
type StorageConfig struct {
	Path         string `yaml:"path"`          // Campaign store (serve mode)
	SnapshotPath string `yaml:"snapshot_path"` // Editor session snapshot
}

// GatewayConfig selects the persistence gateway the server and CLI use.
type GatewayConfig struct {
	Mode    string        `yaml:"mode"`     // bolt or memory
	BaseURL string        `yaml:"base_url"` // API base URL for CLI commands
	OwnerID string        `yaml:"owner_id"` // Forced owner for created campaigns
	Latency time.Duration `yaml:"latency"`  // Simulated latency (memory mode)
	Seed    bool          `yaml:"seed"`     // Seed demo campaigns (memory mode)
}

// EditorConfig contains editing session settings.
type EditorConfig struct {
	AutosaveDelay time.Duration `yaml:"autosave_delay"` // Default: 1s
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"` // Default: :9090
	Path       string `yaml:"path"`        // Default: /metrics
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with all defaults applied, for running
// without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults sets default values for unset fields.
func (c *Config) SetDefaults() {
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/campaigns.db"
	}
	if c.Storage.SnapshotPath == "" {
		c.Storage.SnapshotPath = "data/editor.db"
	}
	if c.Gateway.Mode == "" {
		c.Gateway.Mode = GatewayModeBolt
	}
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = "http://localhost:8080"
	}
	if c.Gateway.OwnerID == "" {
		c.Gateway.OwnerID = "123"
	}
	if c.Editor.AutosaveDelay == 0 {
		c.Editor.AutosaveDelay = time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Gateway.Mode {
	case GatewayModeBolt, GatewayModeMemory:
	default:
		return fmt.Errorf("gateway.mode must be %q or %q, got %q", GatewayModeBolt, GatewayModeMemory, c.Gateway.Mode)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Editor.AutosaveDelay < 0 {
		return fmt.Errorf("editor.autosave_delay must not be negative")
	}
	if c.Gateway.Latency < 0 {
		return fmt.Errorf("gateway.latency must not be negative")
	}

	return nil
}
