package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/David-Botos/pmfs-ingress/pkg/cleaner"
	"github.com/David-Botos/pmfs-ingress/pkg/config"
)

func cleanCommand() *cobra.Command {
	var input, output, reports string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the raw table and write the cleaned table and report",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(func(cfg *config.Config) {
				if input != "" {
					cfg.RawPath = input
				}
				if output != "" {
					cfg.CleanPath = output
				}
				if reports != "" {
					cfg.ReportsDir = reports
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

			dc, err := cleaner.NewDataCleaner(cleaner.Options{
				CleanPath:   a.cfg.CleanPath,
				Output:      a.cleanOptions(),
				ReportsDir:  a.cfg.ReportsDir,
				Placeholder: a.cfg.ImputePlaceholder,
			}, a.logger)
			if err != nil {
				return err
			}

			result, err := dc.Run(cmd.Context(), reader)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Base limpa salva em: %s\nRelatório salvo em: %s\n",
				result.CleanPath, result.ReportPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "raw CSV path (overrides RAW_PATH)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "cleaned CSV path (overrides CLEAN_PATH)")
	cmd.Flags().StringVar(&reports, "reports", "", "report directory (overrides REPORTS_DIR)")
	return cmd
}
