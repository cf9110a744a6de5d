package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kapu/pokedex-go/internal/constants"
	"github.com/kapu/pokedex-go/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists entries in a local database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteStore(ctx context.Context, filePath string, logger *zap.Logger) (*SQLiteStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", filePath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	st := &SQLiteStore{db: db, logger: logger}
	if err := st.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("SQLite store opened", zap.String("path", filePath))
	return st, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.StoreConfig.ConnectTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+constants.StoreConfig.TableName+` (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to init sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM `+constants.StoreConfig.TableName+` WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("SQLite get failed", zap.String("key", key), zap.Error(err))
		return "", false, errors.NewCacheError("get failed", "get", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+constants.StoreConfig.TableName+` (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Unix(),
	)
	if err != nil {
		s.logger.Error("SQLite set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
