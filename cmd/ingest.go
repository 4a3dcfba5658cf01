package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/provider"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <provider>",
	Short: "Run a single provider adapter and stage its tables",
	Long:  "Runs one adapter and writes its staged tables without merging. Adapters that consume the canonical sample require a prior staged simbad run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := provider.NewRegistry()
		adapter, err := reg.Get(args[0])
		if err != nil {
			return err
		}

		deps := provider.NewDeps(cfg)
		if adapter.Name() != "simbad" {
			canonical, err := provider.LoadStaged(cfg.StagingDir, "simbad")
			if err != nil {
				return eris.Wrap(err, "ingest: no staged simbad tables, run `targetdb ingest simbad` first")
			}
			deps.Canonical = canonical
		}
		if adapter.Name() == "life" {
			grid, err := loadGrid(ctx, deps)
			if err != nil {
				return err
			}
			deps.Grid = grid
		}

		d, err := adapter.Build(ctx, deps)
		if err != nil {
			return err
		}
		if err := provider.StageDict(cfg.StagingDir, adapter.Name(), d); err != nil {
			return err
		}

		for _, table := range catalog.AllTables {
			if n := d.Len(table); n > 0 {
				zap.L().Info("table staged", zap.String("table", table), zap.Int("rows", n))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
