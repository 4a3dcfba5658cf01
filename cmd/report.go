package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/provider"
	"github.com/life-td/targetdb-cli/internal/report"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a build-summary workbook from the final tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		final, err := provider.LoadFinal(cfg.StagingDir)
		if err != nil {
			return err
		}
		if err := report.Write(final, reportOut); err != nil {
			return err
		}
		zap.L().Info("report written", zap.String("path", reportOut))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "targetdb-report.xlsx", "output workbook path")
	rootCmd.AddCommand(reportCmd)
}
