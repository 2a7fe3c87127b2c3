package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/wlp-app/wlp/internal/core/domain"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.City == nil {
		city := domain.Tokyo
		cfg.City = &city
	}
	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if cfg.Weather.RefreshInterval == 0 {
		cfg.Weather.RefreshInterval = 10 * time.Minute
	}
	if cfg.Weather.RequestTimeout == 0 {
		cfg.Weather.RequestTimeout = 10 * time.Second
	}
	if cfg.Weather.CacheTTL == 0 {
		cfg.Weather.CacheTTL = 5 * time.Minute
	}
	if cfg.Backend.RequestTimeout == 0 {
		cfg.Backend.RequestTimeout = 10 * time.Second
	}
	if cfg.Offline.ProbeAddr == "" {
		cfg.Offline.ProbeAddr = "1.1.1.1:443"
	}
	if cfg.Offline.ProbeInterval == 0 {
		cfg.Offline.ProbeInterval = 5 * time.Second
	}
	if cfg.Offline.ProbeTimeout == 0 {
		cfg.Offline.ProbeTimeout = 3 * time.Second
	}
	if cfg.Offline.ReassertInterval == 0 {
		cfg.Offline.ReassertInterval = 8 * time.Second
	}
	if cfg.Offline.Debounce == 0 {
		cfg.Offline.Debounce = 1500 * time.Millisecond
	}
}
