package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kapu/pokedex-go/pkg/errors"
	"go.uber.org/zap"
)

const (
	EngineMemory   = "memory"
	EngineSQLite   = "sqlite"
	EngineRedis    = "redis"
	EnginePostgres = "postgres"
)

// Store is the persistent key-value capability the lookup service depends on.
// Values are opaque strings; there is no multi-key transaction.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Options selects and configures a Store engine.
type Options struct {
	Engine     string
	SQLitePath string
	Redis      RedisConfig
	Postgres   PostgresConfig
}

// NewByEngine opens the engine named in opts.
func NewByEngine(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Engine)) {
	case EngineMemory:
		return NewMemoryStore(), nil
	case "", EngineSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath, logger)
	case EngineRedis:
		return NewRedisStore(ctx, opts.Redis, logger)
	case EnginePostgres:
		return NewPostgresStore(ctx, opts.Postgres, logger)
	default:
		return nil, fmt.Errorf("unsupported store engine: %s", opts.Engine)
	}
}

// GetJSON loads key into dest. It reports false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, errors.NewCacheError("unmarshal failed", "get", key, err)
	}
	return true, nil
}

// SetJSON serializes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}
	return s.Set(ctx, key, string(data))
}
