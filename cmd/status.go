package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/life-td/targetdb-cli/internal/buildlog"
	"github.com/life-td/targetdb-cli/internal/catalog"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent builds and their table counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := buildlog.Open(filepath.Join(cfg.StagingDir, "buildlog.db"))
		if err != nil {
			return err
		}
		defer store.Close()

		builds, err := store.ListBuilds(cmd.Context(), 10)
		if err != nil {
			return err
		}
		if len(builds) == 0 {
			fmt.Println("no builds recorded")
			return nil
		}

		for _, b := range builds {
			fmt.Printf("%s  %-8s  cut=%gpc  started=%s\n",
				b.ID, b.Status, b.DistanceCutPc, b.StartedAt.Format("2006-01-02 15:04:05"))
			if b.Error != "" {
				fmt.Printf("  error: %s\n", b.Error)
			}
		}

		counts, err := store.Counts(cmd.Context(), builds[0].ID)
		if err != nil {
			return err
		}
		if len(counts) > 0 {
			fmt.Println("\nlatest build tables:")
			for _, table := range catalog.AllTables {
				fmt.Printf("  %-16s %d\n", table, counts[table])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
