package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the service. It is
// built once at startup and injected into components; nothing reads the
// environment after Load returns.
type Config struct {
	// Service
	ServiceName string `env:"SERVICE_NAME" envDefault:"screencast"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Database
	DBType         string `env:"DB_TYPE" envDefault:"sqlite"`
	DBPath         string `env:"DB_PATH" envDefault:"./screencast.db"`
	DBHost         string `env:"DB_HOST" envDefault:"localhost"`
	DBPort         int    `env:"DB_PORT" envDefault:"5432"`
	DBUser         string `env:"DB_USER" envDefault:"screencast"`
	DBPassword     string `env:"DB_PASSWORD" envDefault:""`
	DBName         string `env:"DB_NAME" envDefault:"screencast"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"./migrations"`

	// Media host (stream library + storage zone + CDN)
	StreamBaseURL     string        `env:"STREAM_BASE_URL" envDefault:"https://video.bunnycdn.com/library"`
	StorageBaseURL    string        `env:"STORAGE_BASE_URL"`
	CDNBaseURL        string        `env:"CDN_BASE_URL"`
	EmbedBaseURL      string        `env:"EMBED_BASE_URL" envDefault:"https://iframe.mediadelivery.net/embed"`
	TranscriptBaseURL string        `env:"TRANSCRIPT_BASE_URL"`
	LibraryID         string        `env:"STREAM_LIBRARY_ID"`
	StreamAccessKey   string        `env:"STREAM_ACCESS_KEY"`
	StorageAccessKey  string        `env:"STORAGE_ACCESS_KEY"`
	HostTimeout       time.Duration `env:"MEDIA_HOST_TIMEOUT" envDefault:"30s"`

	// Identity collaborator
	AuthBaseURL string        `env:"AUTH_BASE_URL" envDefault:"http://localhost:3000"`
	AuthTimeout time.Duration `env:"AUTH_TIMEOUT" envDefault:"10s"`

	// Uploads
	MaxThumbnailBytes int64 `env:"MAX_THUMBNAIL_BYTES" envDefault:"10485760"`
	DefaultPageSize   int   `env:"DEFAULT_PAGE_SIZE" envDefault:"8"`
	MaxPageSize       int   `env:"MAX_PAGE_SIZE" envDefault:"50"`

	// Fixed-window rate limit on metadata registration
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"2"`

	// Reconciliation sweeper
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
	SweepTTL      time.Duration `env:"SWEEP_TTL" envDefault:"1h"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.StreamAccessKey = strings.TrimSpace(cfg.StreamAccessKey)
	cfg.StorageAccessKey = strings.TrimSpace(cfg.StorageAccessKey)
	cfg.LibraryID = strings.TrimSpace(cfg.LibraryID)

	switch cfg.DBType {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE: %s", cfg.DBType)
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 8
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}
