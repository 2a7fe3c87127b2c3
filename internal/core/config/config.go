package config

import (
	"time"

	"github.com/wlp-app/wlp/internal/core/domain"
	redisclient "github.com/wlp-app/wlp/internal/infra/redis"
	"github.com/wlp-app/wlp/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	City     *domain.City       `yaml:"city"`
	Weather  WeatherConfig      `yaml:"weather"`
	Backend  BackendConfig      `yaml:"backend"`
	Offline  OfflineConfig      `yaml:"offline"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds the status HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// WeatherConfig holds the weather API settings.
type WeatherConfig struct {
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
}

// BackendConfig holds the auth/data backend settings.
type BackendConfig struct {
	URL            string        `yaml:"url"`
	Email          string        `yaml:"email"`
	Password       string        `yaml:"password"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// OfflineConfig holds connectivity monitoring settings.
type OfflineConfig struct {
	// ProbeAddr is the TCP address dialled to decide whether the network
	// path is up.
	ProbeAddr        string        `yaml:"probe_addr"`
	ProbeInterval    time.Duration `yaml:"probe_interval"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	ReassertInterval time.Duration `yaml:"reassert_interval"`
	Debounce         time.Duration `yaml:"debounce"`
}
