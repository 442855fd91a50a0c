package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources  Sources  `yaml:"sources"`
	Poll     Poll     `yaml:"poll"`
	Triggers Triggers `yaml:"triggers"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
}

type Sources struct {
	Feeds []Feed `yaml:"feeds"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Poll struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	Timezone        string `yaml:"timezone"`
}

type Triggers struct {
	Path string `yaml:"path"`
}

type Output struct {
	DataDir      string `yaml:"data_dir"`
	Console      bool   `yaml:"console"`
	Digest       bool   `yaml:"digest"`
	Archive      bool   `yaml:"archive"`
	FetchContent bool   `yaml:"fetch_content"`
}

type Server struct {
	Port int `yaml:"port"`
}

// ConfigDir returns the XDG config directory for newswatch.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "newswatch")
}

// DataDir returns the XDG data directory for newswatch.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "newswatch")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/newswatch/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'newswatch init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Poll: Poll{
			IntervalSeconds: 120,
			Timezone:        "America/New_York",
		},
		Triggers: Triggers{Path: filepath.Join(ConfigDir(), "triggers.txt")},
		Output: Output{
			Console: true,
			Digest:  true,
			Archive: true,
		},
		Server: Server{Port: 8000},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Poll.IntervalSeconds <= 0 {
		return nil, fmt.Errorf("poll.interval_seconds must be positive, got %d", cfg.Poll.IntervalSeconds)
	}

	return cfg, nil
}

// Interval returns the poll interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// Location loads the reference timezone used for trigger bounds and
// zone-less feed timestamps.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Poll.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Poll.Timezone, err)
	}
	return loc, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
