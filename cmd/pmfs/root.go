package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
	"github.com/David-Botos/pmfs-ingress/pkg/connector"
	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/source"
)

var (
	// envFile is the dotenv file read before the environment
	envFile string

	// Debug forces debug level logging for all commands
	Debug bool

	rootCmd = &cobra.Command{
		Use:   "pmfs",
		Short: "Profile, clean and load the PMFS Amazônia Legal dataset",
		Long: `pmfs runs the three PMFS batch jobs: profile reports data quality problems
of the raw table, clean applies the five cleaning stages and writes the cleaned
table with a text report, and load upserts one project document per
registration number into the configured document store.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(profileCommand())
	rootCmd.AddCommand(cleanCommand())
	rootCmd.AddCommand(loadCommand())
}

// app carries what every subcommand needs
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	conv   *converter.TypeConverter
}

// setup loads configuration, applies flag overrides and builds the logger
func setup(override func(cfg *config.Config)) (*app, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if Debug {
		cfg.LogLevel = "debug"
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	conv := converter.NewTypeConverterWithConfig(logger, converter.TypeConverterConfig{
		NullTokens: cfg.NullTokens,
	})
	return &app{cfg: cfg, logger: logger, conv: conv}, nil
}

// rawReader opens the configured raw source; the closer releases any connection
func (a *app) rawReader(ctx context.Context) (source.Reader, io.Closer, error) {
	switch a.cfg.RawSource {
	case config.SourceSnowflake:
		factory := connector.NewConnectorFactory(a.cfg, a.logger)
		conn, err := factory.CreateSnowflakeConnector(ctx)
		if err != nil {
			return nil, nil, err
		}
		return conn.RawTableReader(a.conv), conn, nil
	default:
		opts := source.CSVOptions{Delimiter: a.cfg.RawDelimiter, Encoding: a.cfg.Encoding}
		return source.NewFileReader(a.cfg.RawPath, opts, a.conv, a.logger), nopCloser{}, nil
	}
}

// cleanOptions is the format shared by the cleaned file writer and reader
func (a *app) cleanOptions() source.CSVOptions {
	return source.CSVOptions{Delimiter: a.cfg.CleanDelimiter, Encoding: a.cfg.Encoding}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func closeQuietly(logger *zap.Logger, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("Failed to close connection", zap.Error(err))
	}
}
