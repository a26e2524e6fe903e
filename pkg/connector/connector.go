// Package connector opens the database pools used for raw input and document storage.
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
)

// DatabaseConnector defines the interface for database connectors
type DatabaseConnector interface {
	// DB returns the underlying database connection
	DB() *sql.DB

	// Close closes the connection and releases resources
	Close() error
}

// ConnStats contains standardized connection statistics
type ConnStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	MaxOpenConns    int
	WaitCount       int64
}

// GetConnectionStats returns connection pool statistics for logging
func GetConnectionStats(db *sql.DB) ConnStats {
	s := db.Stats()
	return ConnStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
		MaxOpenConns:    s.MaxOpenConnections,
		WaitCount:       s.WaitCount,
	}
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	s := GetConnectionStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open", s.OpenConnections),
		zap.Int("in_use", s.InUse),
		zap.Int("idle", s.Idle),
		zap.Int("max_open", s.MaxOpenConns),
		zap.Int64("waits", s.WaitCount))
}

// PingWithTimeout pings db, giving up after timeout
func PingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := db.PingContext(pingCtx)
	if err != nil && pingCtx.Err() != nil {
		return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
	}
	return err
}

// ApplyConnectionSettings applies the non-zero pool limits in s
func ApplyConnectionSettings(db *sql.DB, s config.PoolSettings) {
	if s.MaxOpenConns > 0 {
		db.SetMaxOpenConns(s.MaxOpenConns)
	}
	if s.MaxIdleConns > 0 {
		db.SetMaxIdleConns(s.MaxIdleConns)
	}
	if s.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(s.ConnMaxLifetime)
	}
	if s.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(s.ConnMaxIdleTime)
	}
}

// pool is the sqlx handle shared by every connector
type pool struct {
	db     *sqlx.DB
	name   string
	logger *zap.Logger
}

// openPool applies s to db and pings it. db is closed when the ping fails.
func openPool(ctx context.Context, db *sqlx.DB, name string, s config.PoolSettings,
	pingTimeout time.Duration, logger *zap.Logger) (*pool, error) {
	ApplyConnectionSettings(db.DB, s)

	if err := PingWithTimeout(ctx, db.DB, pingTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", name, err)
	}

	LogConnectionStats(logger, name, db.DB)
	return &pool{db: db, name: name, logger: logger}, nil
}

// DB returns the underlying database connection
func (p *pool) DB() *sql.DB {
	return p.db.DB
}

// X returns the sqlx handle
func (p *pool) X() *sqlx.DB {
	return p.db
}

// Close closes the pool
func (p *pool) Close() error {
	p.logger.Info("Closing connection", zap.String("database", p.name))
	LogConnectionStats(p.logger, p.name, p.db.DB)
	return p.db.Close()
}
