package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"quizdeck/internal/config"
	"quizdeck/internal/history"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		hist, err := history.Open(dbPath, cfg.HistoryMax)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer hist.Close()

		stats, err := hist.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Quizzes:     %d\n", stats.Total)
		fmt.Printf("Completed:   %d (%.0f%%)\n", stats.Completed, stats.CompletionRate*100)
		if stats.Completed > 0 {
			fmt.Printf("Avg score:   %.0f%%\n", stats.AverageScore)
		}
		return nil
	},
}
