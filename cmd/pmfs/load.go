package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
	"github.com/David-Botos/pmfs-ingress/pkg/loader"
	"github.com/David-Botos/pmfs-ingress/pkg/source"
	"github.com/David-Botos/pmfs-ingress/pkg/store"
)

func loadCommand() *cobra.Command {
	var input, collection, policy string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Upsert one project document per registration number",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(func(cfg *config.Config) {
				if input != "" {
					cfg.CleanPath = input
				}
				if collection != "" {
					cfg.Collection = collection
				}
				if policy != "" {
					cfg.GroupPolicy = policy
				}
			})
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			s, err := store.NewStore(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeQuietly(a.logger, s)

			l, err := loader.NewLoader(s, a.conv, loader.Options{
				Collection: a.cfg.Collection,
				Policy:     a.cfg.GroupPolicy,
			}, a.logger)
			if err != nil {
				return err
			}

			reader := source.NewFileReader(a.cfg.CleanPath, a.cleanOptions(), a.conv, a.logger)
			metrics, err := l.Load(cmd.Context(), reader)
			if err != nil {
				return err
			}

			if asJSON {
				body, err := metrics.ToJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d projetos enviados para a coleção %s\n",
				metrics.DocumentsWritten, metrics.Collection)
			if metrics.SkippedRows > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d linhas sem NRO_REGISTRO ignoradas\n", metrics.SkippedRows)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "cleaned CSV path (overrides CLEAN_PATH)")
	cmd.Flags().StringVar(&collection, "collection", "", "target collection (overrides STORE_COLLECTION)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run metrics as JSON instead of a summary line")
	cmd.Flags().StringVar(&policy, "policy", "", "group aggregation policy, first or strict (overrides GROUP_POLICY)")
	return cmd
}
