package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/provider"
)

var mergeStagingDir string

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge staged provider tables and write the final tables",
	Long: `Merge rebuilds the final tables from the provider dictionaries already
staged by a previous build or ingest, without contacting any provider.
Providers with no staged copy are skipped; the canonical provider is
required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mergeStagingDir != "" {
			cfg.StagingDir = mergeStagingDir
		}

		final, err := provider.MergeStaged(cfg.StagingDir, provider.NewRegistry())
		if err != nil {
			return err
		}

		zap.L().Info("staged tables merged",
			zap.Int("objects", len(final.Objects)),
			zap.Int("stars", len(final.StarBasic)),
			zap.Int("planets", len(final.PlanetBasic)),
			zap.Int("disks", len(final.DiskBasic)),
			zap.String("staging_dir", cfg.StagingDir),
		)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeStagingDir, "staging-dir", "", "staging directory (default from config)")
	rootCmd.AddCommand(mergeCmd)
}
