package connector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
)

// ConnectorFactory creates connectors from the loaded configuration sections
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{cfg: cfg, logger: logger}
}

// CreateSnowflakeConnector connects to the raw source warehouse
func (f *ConnectorFactory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	if f.cfg.Snowflake == nil {
		return nil, errors.New("snowflake configuration is not loaded")
	}
	f.logger.Info("Creating connector", zap.String("driver", "snowflake"))
	conn, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake)
	return wrapOpenError("Snowflake", conn, err)
}

// CreatePostgresConnector connects to the JSONB document database
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	if f.cfg.Postgres == nil {
		return nil, errors.New("postgres configuration is not loaded")
	}
	f.logger.Info("Creating connector", zap.String("driver", "postgres"))
	conn, err := NewPostgresConnector(ctx, f.cfg.Postgres)
	return wrapOpenError("PostgreSQL", conn, err)
}

// CreateSQLiteConnector opens the local document database
func (f *ConnectorFactory) CreateSQLiteConnector(ctx context.Context) (*SQLiteConnector, error) {
	if f.cfg.SQLite == nil {
		return nil, errors.New("sqlite configuration is not loaded")
	}
	f.logger.Info("Creating connector", zap.String("driver", "sqlite"))
	conn, err := NewSQLiteConnector(ctx, f.cfg.SQLite)
	return wrapOpenError("SQLite", conn, err)
}

func wrapOpenError[C any](name string, conn C, err error) (C, error) {
	if err != nil {
		var zero C
		return zero, fmt.Errorf("failed to create %s connector: %w", name, err)
	}
	return conn, nil
}
