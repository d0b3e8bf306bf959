package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"quizdeck/internal/config"
	"quizdeck/internal/history"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all quiz history",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes all quiz history; re-run with --yes to confirm")
		}

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

		if err := hist.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Skip the confirmation")
}
