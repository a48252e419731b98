package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func migrateCmd() *cobra.Command {
	var (
		fromDriver string
		fromPath   string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the data store",
		Long: `Initialize or update the configured store to the latest schema.

With --from, every category, expense and the budget are first copied from
another store, replacing what the configured store holds. Use it to move
between the sqlite and json drivers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			driver, path := config.StoragePath(viper.GetViper())

			slog.Info("Running migrations", "driver", driver, "path", path)
			dst, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = dst.Close() }()

			out := cmd.OutOrStdout()
			if fromPath == "" {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Store is up to date (%s: %s)", driver, path)))
				return nil
			}

			src, err := storage.Open(fromDriver, config.ExpandPath(fromPath))
			if err != nil {
				return err
			}
			defer func() { _ = src.Close() }()
			if err := src.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to prepare source store: %w", err)
			}

			stats, err := storage.Copy(ctx, src, dst)
			if err != nil {
				return fmt.Errorf("copy failed: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Copied %d categories, %d expense(s), budget copied: %t",
				stats.Categories, stats.Expenses, stats.Budget)))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDriver, "from-driver", storage.DriverJSON, "driver of the source store (sqlite or json)")
	cmd.Flags().StringVar(&fromPath, "from", "", "path of a store to copy from")

	return cmd
}
