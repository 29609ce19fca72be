// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration for the simulation service.
type Config struct {
	Port            string        `env:"LEAGUE_PORT" envDefault:"4000"`
	Seed            int64         `env:"LEAGUE_SEED" envDefault:"1"`
	Seasons         int           `env:"LEAGUE_SEASONS" envDefault:"3"`
	Teams           int           `env:"LEAGUE_TEAMS" envDefault:"12"`
	Workers         int           `env:"LEAGUE_WORKERS" envDefault:"4"`
	LogLevel        string        `env:"LEAGUE_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LEAGUE_LOG_FORMAT" envDefault:"text"`
	SnapshotDir     string        `env:"LEAGUE_SNAPSHOT_DIR" envDefault:"data/snapshots"`
	DBPath          string        `env:"LEAGUE_DB_PATH" envDefault:"data/league.db"`
	ShutdownTimeout time.Duration `env:"LEAGUE_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Metrics MetricsConfig
}

// MetricsConfig controls telemetry export.
type MetricsConfig struct {
	Enabled      bool   `env:"LEAGUE_METRICS_ENABLED" envDefault:"true"`
	Port         string `env:"LEAGUE_METRICS_PORT" envDefault:"9090"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"league-engine"`
	OtlpEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtlpInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Teams < 2 {
		return fmt.Errorf("config: need at least 2 teams, got %d", c.Teams)
	}
	if c.Seasons < 1 {
		return fmt.Errorf("config: need at least 1 season, got %d", c.Seasons)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: need at least 1 worker, got %d", c.Workers)
	}
	return nil
}
