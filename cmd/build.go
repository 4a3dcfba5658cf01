package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/buildlog"
	"github.com/life-td/targetdb-cli/internal/provider"
	"github.com/life-td/targetdb-cli/internal/spectral"
)

var (
	buildDistanceCut float64
	buildStagingDir  string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run every provider adapter, merge, and write the final tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if buildDistanceCut > 0 {
			cfg.DistanceCutPc = buildDistanceCut
		}
		if buildStagingDir != "" {
			cfg.StagingDir = buildStagingDir
		}
		if err := os.MkdirAll(cfg.StagingDir, 0o755); err != nil {
			return eris.Wrap(err, "build: create staging dir")
		}

		deps := provider.NewDeps(cfg)
		grid, err := loadGrid(ctx, deps)
		if err != nil {
			return err
		}
		deps.Grid = grid

		store, err := buildlog.Open(filepath.Join(cfg.StagingDir, "buildlog.db"))
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}

		engine := provider.NewEngine(provider.NewRegistry(), deps, store)
		final, err := engine.Run(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("target database built",
			zap.Int("objects", len(final.Objects)),
			zap.Int("stars", len(final.StarBasic)),
			zap.Int("planets", len(final.PlanetBasic)),
			zap.Int("disks", len(final.DiskBasic)),
			zap.String("staging_dir", cfg.StagingDir),
		)
		return nil
	},
}

func loadGrid(ctx context.Context, deps *provider.Deps) (*spectral.Grid, error) {
	rc, err := deps.Fetch.Download(ctx, cfg.Files.MamajekCSV)
	if err != nil {
		return nil, eris.Wrap(err, "build: fetch calibration grid")
	}
	defer rc.Close()

	grid, err := spectral.LoadGrid(rc)
	if err != nil {
		return nil, err
	}
	zap.L().Info("calibration grid loaded", zap.Int("entries", grid.Len()))
	return grid, nil
}

func init() {
	buildCmd.Flags().Float64Var(&buildDistanceCut, "distance-cut", 0, "distance cut in parsec (default from config)")
	buildCmd.Flags().StringVar(&buildStagingDir, "staging-dir", "", "staging directory (default from config)")
	rootCmd.AddCommand(buildCmd)
}
