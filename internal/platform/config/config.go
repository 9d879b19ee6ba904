package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAPIURL         = "https://api.moodquest.app"
	defaultRefreshSeconds = 45
)

type Config struct {
	APIURL         string `yaml:"api_url"`
	APIToken       string `yaml:"api_token"`
	RefreshSeconds int    `yaml:"refresh_seconds"`
	DBPath         string `yaml:"db_path"`
}

// Load reads the YAML config at path, falling back to defaults when the file
// is absent. MOODQUEST_TOKEN always overrides the file token.
func Load(path string) (Config, error) {
	cfg := Config{
		APIURL:         defaultAPIURL,
		RefreshSeconds: defaultRefreshSeconds,
	}
	if path == "" {
		path = DefaultPath()
	}

	payload, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(payload, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults + env are enough to run
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if token := os.Getenv("MOODQUEST_TOKEN"); token != "" {
		cfg.APIToken = token
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.RefreshSeconds <= 0 {
		cfg.RefreshSeconds = defaultRefreshSeconds
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), "moodquest.db")
	}
	return cfg, nil
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".moodquest", "config.yaml")
	}
	return filepath.Join(home, ".moodquest", "config.yaml")
}

func (c Config) RefreshEvery() time.Duration {
	return time.Duration(c.RefreshSeconds) * time.Second
}
