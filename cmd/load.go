package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/db"
	"github.com/life-td/targetdb-cli/internal/provider"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Publish the final tables into PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		final, err := provider.LoadFinal(cfg.StagingDir)
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool, cfg.Database.Schema); err != nil {
			return err
		}
		loaded, err := db.Load(ctx, pool, cfg.Database.Schema, final)
		if err != nil {
			return err
		}

		var total int64
		for _, n := range loaded {
			total += n
		}
		zap.L().Info("database published",
			zap.String("schema", cfg.Database.Schema),
			zap.Int64("rows", total),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
