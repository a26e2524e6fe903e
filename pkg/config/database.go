package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// PoolSettings bounds a database/sql connection pool
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// SnowflakeConfig holds Snowflake connection parameters for the raw source
type SnowflakeConfig struct {
	User          string
	Password      string
	Account       string
	Warehouse     string
	Database      string
	Schema        string
	Role          string
	Authenticator gosnowflake.AuthType
	SourceTable   string // Table holding the raw PMFS rows

	Pool         PoolSettings
	QueryTimeout time.Duration // Session statement timeout, 0 keeps the account default
}

// PostgresConfig holds PostgreSQL connection parameters for the document store
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	Pool             PoolSettings
	StatementTimeout time.Duration
}

// SQLiteConfig holds the path of the local document database
type SQLiteConfig struct {
	Path string
}

// ElasticsearchConfig holds Elasticsearch connection parameters
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	APIKey      string
	MaxRetries  int
	PingTimeout time.Duration
}

// RedisConfig holds Redis connection parameters
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

var snowflakeAuthenticators = map[string]gosnowflake.AuthType{
	"snowflake":       gosnowflake.AuthTypeSnowflake,
	"oauth":           gosnowflake.AuthTypeOAuth,
	"externalbrowser": gosnowflake.AuthTypeExternalBrowser,
	"jwt":             gosnowflake.AuthTypeJwt,
	"okta":            gosnowflake.AuthTypeOkta,
}

// LoadSnowflakeConfig loads the raw source warehouse settings from SNOWFLAKE_* variables
func LoadSnowflakeConfig() (*SnowflakeConfig, error) {
	req, err := requireEnv("SNOWFLAKE_USER", "SNOWFLAKE_PASSWORD", "SNOWFLAKE_ACCOUNT",
		"SNOWFLAKE_WAREHOUSE", "SNOWFLAKE_SOURCE_TABLE")
	if err != nil {
		return nil, err
	}

	// Unknown authenticators fall back to user/password
	authenticator, ok := snowflakeAuthenticators[strings.ToLower(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake"))]
	if !ok {
		authenticator = gosnowflake.AuthTypeSnowflake
	}

	return &SnowflakeConfig{
		User:          req["SNOWFLAKE_USER"],
		Password:      req["SNOWFLAKE_PASSWORD"],
		Account:       req["SNOWFLAKE_ACCOUNT"],
		Warehouse:     req["SNOWFLAKE_WAREHOUSE"],
		SourceTable:   req["SNOWFLAKE_SOURCE_TABLE"],
		Database:      getEnv("SNOWFLAKE_DATABASE", "PMFS"),
		Schema:        getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
		Role:          getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator: authenticator,

		// The raw table is read with a single query
		Pool:         loadPoolSettings("SNOWFLAKE", 2, 1, 600, 300),
		QueryTimeout: getEnvAsSeconds("SNOWFLAKE_QUERY_TIMEOUT_SECONDS", 300),
	}, nil
}

// LoadPostgresConfig loads the document store database settings from POSTGRES_* variables
func LoadPostgresConfig() (*PostgresConfig, error) {
	req, err := requireEnv("POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB")
	if err != nil {
		return nil, err
	}

	return &PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnvAsInt("POSTGRES_PORT", 5432),
		User:     req["POSTGRES_USER"],
		Password: req["POSTGRES_PASSWORD"],
		Database: req["POSTGRES_DB"],
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		// One connection is held for the whole load loop
		Pool:             loadPoolSettings("POSTGRES", 1, 1, 1800, 600),
		StatementTimeout: getEnvAsSeconds("POSTGRES_STATEMENT_TIMEOUT_SECONDS", 60),
	}, nil
}

// LoadSQLiteConfig loads the local document database location
func LoadSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{Path: getEnv("SQLITE_PATH", "data/pmfs.db")}
}

// LoadElasticsearchConfig loads Elasticsearch configuration from environment variables
func LoadElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:         getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
		Username:    getEnv("ELASTICSEARCH_USERNAME", ""),
		Password:    getEnv("ELASTICSEARCH_PASSWORD", ""),
		APIKey:      getEnv("ELASTICSEARCH_API_KEY", ""),
		MaxRetries:  getEnvAsInt("ELASTICSEARCH_MAX_RETRIES", 0),
		PingTimeout: getEnvAsSeconds("ELASTICSEARCH_PING_TIMEOUT_SECONDS", 5),
	}
}

// LoadRedisConfig loads Redis configuration from environment variables
func LoadRedisConfig() *RedisConfig {
	return &RedisConfig{
		Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

// ConnectionString returns a keyword/value PostgreSQL DSN
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// QualifiedTable returns the fully qualified raw source table
func (c *SnowflakeConfig) QualifiedTable() string {
	return fmt.Sprintf("%s.%s.%s", c.Database, c.Schema, c.SourceTable)
}

// loadPoolSettings reads <PREFIX>_MAX_OPEN_CONNS and friends
func loadPoolSettings(prefix string, maxOpen, maxIdle, lifetimeSeconds, idleSeconds int) PoolSettings {
	return PoolSettings{
		MaxOpenConns:    getEnvAsInt(prefix+"_MAX_OPEN_CONNS", maxOpen),
		MaxIdleConns:    getEnvAsInt(prefix+"_MAX_IDLE_CONNS", maxIdle),
		ConnMaxLifetime: getEnvAsSeconds(prefix+"_CONN_MAX_LIFETIME_SECONDS", lifetimeSeconds),
		ConnMaxIdleTime: getEnvAsSeconds(prefix+"_CONN_MAX_IDLE_TIME_SECONDS", idleSeconds),
	}
}

// requireEnv returns the values of keys, failing on the first one that is unset
func requireEnv(keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		v := os.Getenv(key)
		if v == "" {
			return nil, fmt.Errorf("%s environment variable is required", key)
		}
		values[key] = v
	}
	return values, nil
}

func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}
