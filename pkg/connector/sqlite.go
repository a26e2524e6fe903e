package connector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
)

// memoryPath opens a private in-memory database
const memoryPath = ":memory:"

// A single connection keeps writes serialized and an in-memory database alive
var sqlitePool = config.PoolSettings{MaxOpenConns: 1, MaxIdleConns: 1}

// SQLiteConnector holds the local database file backing the default document store
type SQLiteConnector struct {
	*pool
}

// NewSQLiteConnector opens the database at cfg.Path, creating its directory if needed
func NewSQLiteConnector(ctx context.Context, cfg *config.SQLiteConfig) (*SQLiteConnector, error) {
	logger := zap.L().Named("sqlite-connector")

	if cfg.Path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	logger.Info("Opening SQLite database", zap.String("path", cfg.Path))

	db, err := sqlx.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite connection: %w", err)
	}

	p, err := openPool(ctx, db, cfg.Path, sqlitePool, 5*time.Second, logger)
	if err != nil {
		return nil, err
	}
	return &SQLiteConnector{pool: p}, nil
}
