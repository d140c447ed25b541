package config

import (
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/robo-arena/internal/db"
	"github.com/AdamBeresnev/robo-arena/internal/export"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBDriver    string     `env:"DB_DRIVER" envDefault:"sqlite3"`
	DatabaseURL string     `env:"DATABASE_URL" envDefault:"robo-arena.db"`
	CORSOrigins []string   `env:"CORS_ORIGINS" envSeparator:","`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	ExportBucket          string `env:"EXPORT_BUCKET"`
	ExportEndpoint        string `env:"EXPORT_ENDPOINT"`
	ExportRegion          string `env:"EXPORT_REGION" envDefault:"auto"`
	ExportAccessKeyID     string `env:"EXPORT_ACCESS_KEY_ID"`
	ExportSecretAccessKey string `env:"EXPORT_SECRET_ACCESS_KEY"`
	ExportPublicBaseURL   string `env:"EXPORT_PUBLIC_BASE_URL"`
}

// Load reads a .env file when one exists, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBDriver != db.DriverSQLite && cfg.DBDriver != db.DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return &cfg, nil
}

// ExportEnabled reports whether snapshots should be archived to a bucket.
func (c *Config) ExportEnabled() bool {
	return c.ExportBucket != ""
}

func (c *Config) Export() export.Config {
	return export.Config{
		Bucket:          c.ExportBucket,
		Endpoint:        c.ExportEndpoint,
		Region:          c.ExportRegion,
		AccessKeyID:     c.ExportAccessKeyID,
		SecretAccessKey: c.ExportSecretAccessKey,
		PublicBaseURL:   c.ExportPublicBaseURL,
	}
}
