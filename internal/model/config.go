package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds connection settings for the chat backend.
type ServerConfig struct {
	// BaseURL is the root URL of the chat service
	// (e.g., https://chat.example.com).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// SocketPath is the websocket endpoint path for realtime events.
	SocketPath string `mapstructure:"socket_path" yaml:"socket_path"`
}

// FeedConfig controls how the notification feed fetches data.
type FeedConfig struct {
	// PageSize is how many notifications to request per list fetch.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// RefreshIntervalSec is the fallback full-refresh interval used
	// when the realtime connection is down.
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// DropdownLimit bounds how many notifications the navbar dropdown
	// shows. Display-only; the aggregation itself is unbounded.
	DropdownLimit int `mapstructure:"dropdown_limit" yaml:"dropdown_limit"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Feed    FeedConfig    `mapstructure:"feed" yaml:"feed"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/chatdeck/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "chatdeck", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			SocketPath: "/ws",
		},
		Feed: FeedConfig{
			PageSize:           50,
			RefreshIntervalSec: 300,
		},
		Display: DisplayConfig{
			Theme:         "default",
			DropdownLimit: 10,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.socket_path", "/ws")
	v.SetDefault("feed.page_size", 50)
	v.SetDefault("feed.refresh_interval_sec", 300)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.dropdown_limit", 10)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("feed", cfg.Feed)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
