// Package config loads runtime settings for the rater binaries from the
// environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds settings shared by the server and the CLI. Command-line
// flags use these values as their defaults.
type Config struct {
	Port           int      `env:"RATER_PORT" envDefault:"8080"`
	DBPath         string   `env:"RATER_DB_PATH"`
	MinScore       float64  `env:"RATER_MIN_SCORE" envDefault:"0"`
	MaxScore       float64  `env:"RATER_MAX_SCORE" envDefault:"1"`
	MaxUploadMB    int64    `env:"RATER_MAX_UPLOAD_MB" envDefault:"256"`
	AllowedOrigins []string `env:"RATER_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	Seed           uint64   `env:"RATER_SEED"` // 0 draws a random seed
	ExportFile     string   `env:"RATER_EXPORT_FILE" envDefault:"user_feedback.json"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"INFO"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MinScore >= c.MaxScore {
		return fmt.Errorf("invalid score range: min %v must be below max %v", c.MinScore, c.MaxScore)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("max upload size must be positive")
	}
	if c.ExportFile == "" {
		return errors.New("export file must not be empty")
	}
	return nil
}

// MaxUploadBytes is the multipart body limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
