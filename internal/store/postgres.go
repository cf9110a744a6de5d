package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kapu/pokedex-go/internal/constants"
	"github.com/kapu/pokedex-go/pkg/errors"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN renders the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Database)
}

// PostgresStore persists entries in a shared key-value table.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, constants.StoreConfig.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	ps := &PostgresStore{db: db, logger: logger}
	if err := ps.initSchema(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return ps, nil
}

func (ps *PostgresStore) initSchema(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+constants.StoreConfig.TableName+` (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to init postgres schema: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := ps.db.QueryRowContext(ctx,
		`SELECT value FROM `+constants.StoreConfig.TableName+` WHERE key = $1`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		ps.logger.Error("Postgres get failed", zap.String("key", key), zap.Error(err))
		return "", false, errors.NewCacheError("get failed", "get", key, err)
	}
	return value, true, nil
}

func (ps *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO `+constants.StoreConfig.TableName+` (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, time.Now().UTC().Unix(),
	)
	if err != nil {
		ps.logger.Error("Postgres set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
