package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Desktop   DesktopConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string   `envconfig:"PORT" default:"8000"`
	Host           string   `envconfig:"HOST" default:"0.0.0.0"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StorageConfig holds database and blob storage configuration.
type StorageConfig struct {
	DataDir    string `envconfig:"DATA_DIR" default:"./data"`
	DBPath     string `envconfig:"DB_PATH" default:""`
	QuotaBytes int64  `envconfig:"QUOTA_BYTES" default:"52428800"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Required   bool          `envconfig:"AUTH_REQUIRED" default:"false"`
	SigningKey string        `envconfig:"SIGNING_KEY" default:"stellar-dev-signing-key"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	URLTTL     time.Duration `envconfig:"DOWNLOAD_URL_TTL" default:"1h"`
}

// DesktopConfig holds window manager configuration.
type DesktopConfig struct {
	AutosaveDelay time.Duration `envconfig:"AUTOSAVE_DELAY" default:"1s"`
	AppsOverride  string        `envconfig:"APPS_OVERRIDE" default:""`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8000",
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Storage: StorageConfig{
			DataDir:    "./data",
			QuotaBytes: 50 * 1024 * 1024,
		},
		Auth: AuthConfig{
			Required:   false,
			SigningKey: "stellar-dev-signing-key",
			TokenTTL:   24 * time.Hour,
			URLTTL:     time.Hour,
		},
		Desktop: DesktopConfig{
			AutosaveDelay: time.Second,
		},
	}
}

// DatabasePath returns DBPath or the default database file inside DataDir.
func (s StorageConfig) DatabasePath() string {
	if s.DBPath != "" {
		return s.DBPath
	}
	return s.DataDir + "/stellar.db"
}

// BlobDir returns the directory that holds uploaded file bodies.
func (s StorageConfig) BlobDir() string {
	return s.DataDir + "/blobs"
}
