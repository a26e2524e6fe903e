package connector

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/source"
)

const (
	snowflakeApplication = "pmfs-ingress"
	snowflakePingTimeout = 10 * time.Second
)

// SnowflakeConnector serves the raw PMFS table from a Snowflake warehouse
type SnowflakeConnector struct {
	*pool
	table string
}

// NewSnowflakeConnector opens a pool against the configured warehouse
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig) (*SnowflakeConnector, error) {
	logger := zap.L().Named("snowflake-connector")

	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("table", cfg.QualifiedTable()))

	db := sql.OpenDB(sf.NewConnector(sf.SnowflakeDriver{}, snowflakeDriverConfig(cfg)))

	p, err := openPool(ctx, sqlx.NewDb(db, "snowflake"), "snowflake", cfg.Pool, snowflakePingTimeout, logger)
	if err != nil {
		return nil, err
	}
	return &SnowflakeConnector{pool: p, table: cfg.QualifiedTable()}, nil
}

// snowflakeDriverConfig maps cfg onto the driver config. The statement
// timeout travels as a session parameter so every pooled connection gets it.
func snowflakeDriverConfig(cfg *config.SnowflakeConfig) sf.Config {
	c := sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Schema:        cfg.Schema,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.Authenticator,
		Application:   snowflakeApplication,
		Params:        map[string]*string{},
	}
	if cfg.QueryTimeout > 0 {
		seconds := strconv.Itoa(int(cfg.QueryTimeout.Seconds()))
		c.Params["STATEMENT_TIMEOUT_IN_SECONDS"] = &seconds
	}
	return c
}

// RawTableReader returns a reader over the configured raw source table
func (c *SnowflakeConnector) RawTableReader(conv *converter.TypeConverter) *source.QueryReader {
	return source.NewQueryReader(c.DB(), source.TableQuery(c.table), conv, c.logger)
}
