package connector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
)

const postgresPingTimeout = 5 * time.Second

// PostgresConnector holds the PostgreSQL connection backing the JSONB document store
type PostgresConnector struct {
	*pool
}

// NewPostgresConnector opens a pgx-backed pool for the document store
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig) (*PostgresConnector, error) {
	logger := zap.L().Named("postgres-connector")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	connConfig, err := pgx.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL configuration: %w", err)
	}
	if cfg.StatementTimeout > 0 {
		connConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	db := sqlx.NewDb(stdlib.OpenDB(*connConfig), "pgx")
	p, err := openPool(ctx, db, cfg.Database, cfg.Pool, postgresPingTimeout, logger)
	if err != nil {
		return nil, err
	}
	return &PostgresConnector{pool: p}, nil
}
