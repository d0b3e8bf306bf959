package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quizdeck/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login <access-token>",
	Short: "Save an access token without opening the TUI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := args[0]
		if auth.TokenExpired(token, time.Now()) {
			return fmt.Errorf("token is expired")
		}

		path, err := auth.DefaultPath()
		if err != nil {
			return err
		}
		store := auth.NewStore(path)
		if err := store.Set(auth.Credentials{AccessToken: token}); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}

		fmt.Println("Signed in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := auth.DefaultPath()
		if err != nil {
			return err
		}
		if err := auth.NewStore(path).Clear(); err != nil {
			return fmt.Errorf("clear credentials: %w", err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}
