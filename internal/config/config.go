// Package config loads the console's runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings. Telemetry settings are read separately
// by the otel adapter.
type Config struct {
	Port             string        `env:"PORT" envDefault:"8080"`
	DatabasePath     string        `env:"DATABASE_PATH" envDefault:"orgconsole.db"`
	RemoteAPIURL     string        `env:"REMOTE_API_URL,required,notEmpty"`
	RemoteTimeout    time.Duration `env:"REMOTE_TIMEOUT" envDefault:"30s"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"json"`
	TelemetryEnabled bool          `env:"TELEMETRY_ENABLED" envDefault:"true"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	PurgeInterval    time.Duration `env:"SESSION_PURGE_INTERVAL" envDefault:"1h"`
}

// Load parses Config from environment variables.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RemoteTimeout <= 0 {
		return Config{}, fmt.Errorf("REMOTE_TIMEOUT must be positive, got %s", cfg.RemoteTimeout)
	}
	return cfg, nil
}
