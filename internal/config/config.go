// Package config loads caskkit's user configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dir returns the caskkit config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/caskkit if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "caskkit"), nil
}

// Config holds settings read from config.yaml. Zero fields fall back to
// Defaults.
type Config struct {
	// DataDir holds the history database and archived descriptors.
	DataDir string `yaml:"data_dir"`
	// TrashDir receives zapped paths. Empty means ~/.Trash.
	TrashDir string `yaml:"trash_dir"`
	// Tap is added before installs when set, e.g. "errakhaoui/tap".
	Tap      string         `yaml:"tap"`
	GitHub   GitHubConfig   `yaml:"github"`
	Log      LogConfig      `yaml:"log"`
	Download DownloadConfig `yaml:"download"`
}

// GitHubConfig configures the livecheck GitHub strategies.
type GitHubConfig struct {
	API string `yaml:"api"`
	// TokenEnv names the environment variable holding an API token.
	TokenEnv string `yaml:"token_env"`
}

// LogConfig mirrors logging.Options.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DownloadConfig configures payload downloads.
type DownloadConfig struct {
	Dir            string `yaml:"dir"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Defaults returns the built-in configuration rooted at home.
func Defaults(home string) *Config {
	return &Config{
		DataDir:  filepath.Join(home, ".caskkit"),
		TrashDir: filepath.Join(home, ".Trash"),
		GitHub: GitHubConfig{
			API:      "https://api.github.com",
			TokenEnv: "GITHUB_TOKEN",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Download: DownloadConfig{
			Dir:            filepath.Join(home, ".caskkit", "downloads"),
			TimeoutSeconds: 300,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults
// without an error. Unknown keys are rejected.
func Load(path, home string) (*Config, error) {
	cfg := Defaults(home)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.DataDir = expandHome(cfg.DataDir, home)
	cfg.TrashDir = expandHome(cfg.TrashDir, home)
	cfg.Download.Dir = expandHome(cfg.Download.Dir, home)

	if cfg.Download.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("download.timeout_seconds must not be negative")
	}
	return cfg, nil
}

// GitHubToken returns the token from the configured environment variable.
func (c *Config) GitHubToken() string {
	if c.GitHub.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.GitHub.TokenEnv)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
