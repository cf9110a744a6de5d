package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/kapu/pokedex-go/internal/constants"
	"github.com/kapu/pokedex-go/internal/store"
)

type Config struct {
	PokeAPI  PokeAPIConfig
	Lookup   LookupConfig
	Store    StoreConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Logging  LoggingConfig
}

type PokeAPIConfig struct {
	BaseURL    string        `env:"POKEAPI_BASE_URL" envDefault:"https://pokeapi.co/api/v2"`
	Timeout    time.Duration `env:"POKEAPI_TIMEOUT" envDefault:"10s"`
	MaxRetries int           `env:"POKEAPI_MAX_RETRIES" envDefault:"3"`
}

type LookupConfig struct {
	Concurrency int           `env:"LOOKUP_CONCURRENCY" envDefault:"8"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"0"`
}

type StoreConfig struct {
	Engine     string `env:"STORE_ENGINE" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/pokedex.db"`
}

type RedisConfig struct {
	Host      string `env:"REDIS_HOST" envDefault:"localhost"`
	Port      int    `env:"REDIS_PORT" envDefault:"6379"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"pokedex:"`
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"pokedex"`
	Password string `env:"POSTGRES_PASSWORD"`
	Database string `env:"POSTGRES_DB" envDefault:"pokedex"`
}

type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	File  string `env:"LOG_FILE"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Store.Engine = strings.ToLower(strings.TrimSpace(cfg.Store.Engine))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PokeAPI.BaseURL == "" {
		return fmt.Errorf("POKEAPI_BASE_URL is required")
	}
	if c.PokeAPI.Timeout <= 0 {
		return fmt.Errorf("POKEAPI_TIMEOUT must be positive")
	}
	if c.PokeAPI.MaxRetries < 0 {
		return fmt.Errorf("POKEAPI_MAX_RETRIES must not be negative")
	}
	if c.Lookup.Concurrency < constants.LookupConfig.MinConcurrency ||
		c.Lookup.Concurrency > constants.LookupConfig.MaxConcurrency {
		return fmt.Errorf("LOOKUP_CONCURRENCY must be between %d and %d",
			constants.LookupConfig.MinConcurrency, constants.LookupConfig.MaxConcurrency)
	}
	if c.Lookup.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}

	switch c.Store.Engine {
	case store.EngineMemory, store.EngineRedis:
	case store.EngineSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite engine")
		}
	case store.EnginePostgres:
		if c.Postgres.Host == "" || c.Postgres.Database == "" {
			return fmt.Errorf("POSTGRES_HOST and POSTGRES_DB are required for the postgres engine")
		}
	default:
		return fmt.Errorf("unsupported STORE_ENGINE %q", c.Store.Engine)
	}

	return nil
}
