package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"pledge-escrow/internal/config/configs"
)

// Config aggregates all configuration sections of escrowd. Fields are
// populated from environment variables using the caarlos0/env library.
// Nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the types in the configs package for defaults.
type Config struct {
	// Env names the deployment environment (e.g. prod, dev). It is attached
	// to every log record.
	Env string `env:"ENV" envDefault:"prod"`

	// HTTP holds configuration for the HTTP server (HTTP_*).
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger (LOG_*).
	Log configs.Logger `envPrefix:"LOG_"`

	// Store selects the persistence backend (STORE_*).
	Store configs.Store `envPrefix:"STORE_"`

	// Psql configures the PostgreSQL connection (PSQL_*). Only used when
	// Store.Driver is "postgres".
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Redis configures the event stream sink (REDIS_*).
	Redis configs.Redis `envPrefix:"REDIS_"`

	// SeedDemo seeds demo campaigns when the server starts.
	SeedDemo bool `env:"SEED_DEMO" envDefault:"false"`
}

// Load reads configuration from environment variables into a Config and
// validates the store driver.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Store.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
