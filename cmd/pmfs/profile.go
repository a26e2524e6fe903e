package main

import (
	"github.com/spf13/cobra"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
	"github.com/David-Botos/pmfs-ingress/pkg/profiler"
)

func profileCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Report data quality problems of the raw table",
		Long: `profile reads the raw PMFS table and prints its shape, null census,
duplicates, cardinality, category distributions and sentinel values.
Nothing is written to disk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(func(cfg *config.Config) {
				if input != "" {
					cfg.RawPath = input
				}
			})
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			reader, closer, err := a.rawReader(cmd.Context())
			if err != nil {
				return err
			}
			defer closeQuietly(a.logger, closer)

			table, err := reader.Read(cmd.Context())
			if err != nil {
				return err
			}

			p, err := profiler.NewProfiler(a.conv, a.logger).Profile(table)
			if err != nil {
				return err
			}
			profiler.Render(cmd.OutOrStdout(), p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "raw CSV path (overrides RAW_PATH)")
	return cmd
}
