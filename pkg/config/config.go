package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

// Raw source kinds
const (
	SourceCSV       = "csv"
	SourceSnowflake = "snowflake"
)

// Document store drivers
const (
	StoreSQLite        = "sqlite"
	StorePostgres      = "postgres"
	StoreElasticsearch = "elasticsearch"
	StoreRedis         = "redis"
	StoreMemory        = "memory"
)

// Group aggregation policies for the loader
const (
	GroupPolicyFirst  = "first"
	GroupPolicyStrict = "strict"
)

// Config represents the application configuration
type Config struct {
	// Files
	RawPath        string
	RawDelimiter   rune
	CleanPath      string
	CleanDelimiter rune // Written by the cleaner and read by the loader
	Encoding       string
	ReportsDir     string

	// Cleaning
	NullTokens        []string
	ImputePlaceholder string

	// Raw source
	RawSource string
	Snowflake *SnowflakeConfig

	// Document store
	StoreDriver   string
	Collection    string
	GroupPolicy   string
	SQLite        *SQLiteConfig
	Postgres      *PostgresConfig
	Elasticsearch *ElasticsearchConfig
	Redis         *RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadEnvFile loads variables from a .env file without overriding the environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		RawPath:           getEnv("RAW_PATH", "data/pmfsAmazoniaLegal.csv"),
		RawDelimiter:      getEnvAsRune("RAW_DELIMITER", ';'),
		CleanPath:         getEnv("CLEAN_PATH", "data/pmfsAmazoniaLegal_LIMPA.csv"),
		CleanDelimiter:    getEnvAsRune("CLEAN_DELIMITER", ';'),
		Encoding:          getEnv("FILE_ENCODING", "utf-8"),
		ReportsDir:        getEnv("REPORTS_DIR", "reports"),
		NullTokens:        append([]string{""}, getEnvAsStringSlice("NULL_TOKENS", nil)...),
		ImputePlaceholder: getEnv("IMPUTE_PLACEHOLDER", "Unknown"),
		RawSource:         strings.ToLower(getEnv("RAW_SOURCE", SourceCSV)),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
		Collection:        getEnv("STORE_COLLECTION", "projetos"),
		GroupPolicy:       strings.ToLower(getEnv("GROUP_POLICY", GroupPolicyFirst)),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
	}

	// Only the selected source and store need credentials
	if cfg.RawSource == SourceSnowflake {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, errors.New("failed to load Snowflake configuration: " + err.Error())
		}
		cfg.Snowflake = snowConfig
	}

	switch cfg.StoreDriver {
	case StoreSQLite:
		cfg.SQLite = LoadSQLiteConfig()
	case StorePostgres:
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	case StoreElasticsearch:
		cfg.Elasticsearch = LoadElasticsearchConfig()
	case StoreRedis:
		cfg.Redis = LoadRedisConfig()
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.RawPath == "" && c.RawSource == SourceCSV {
		return errors.New("raw path is required")
	}

	if c.CleanPath == "" {
		return errors.New("clean path is required")
	}

	if c.RawDelimiter == 0 || c.CleanDelimiter == 0 {
		return errors.New("delimiters must be single characters")
	}

	switch c.RawSource {
	case SourceCSV:
	case SourceSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake configuration is required")
		}
	default:
		return fmt.Errorf("unknown raw source %q", c.RawSource)
	}

	switch c.StoreDriver {
	case StoreSQLite, StorePostgres, StoreElasticsearch, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.Collection == "" {
		return errors.New("store collection is required")
	}

	if c.GroupPolicy != GroupPolicyFirst && c.GroupPolicy != GroupPolicyStrict {
		return fmt.Errorf("unknown group policy %q", c.GroupPolicy)
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsRune reads a single-character value; "\t" and "tab" mean a tab
func getEnvAsRune(key string, defaultValue rune) rune {
	value := getEnv(key, "")
	switch value {
	case "":
		return defaultValue
	case `\t`, "tab":
		return '\t'
	}

	r, size := utf8.DecodeRuneInString(value)
	if size != len(value) {
		return 0
	}
	return r
}

// getEnvAsStringSlice parses a comma-separated list, dropping blank entries
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
