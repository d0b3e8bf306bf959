package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"quizdeck/internal/api"
	"quizdeck/internal/app"
	"quizdeck/internal/auth"
	"quizdeck/internal/config"
	"quizdeck/internal/generation"
	"quizdeck/internal/history"
	"quizdeck/internal/logger"
	"quizdeck/internal/prefs"
	"quizdeck/internal/screens"
	"quizdeck/internal/upload"
)

// runApp builds the service graph and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg := config.Load()
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.APIBaseURL = u
	}

	log, err := logger.New(cfg.LogMode, cfg.LogPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	authPath, err := auth.DefaultPath()
	if err != nil {
		return fmt.Errorf("resolve auth path: %w", err)
	}
	authStore := auth.NewStore(authPath)

	prefsDir, err := prefs.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolve prefs dir: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	hist, err := history.Open(dbPath, cfg.HistoryMax)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer hist.Close()

	client := api.NewClient(cfg.APIBaseURL, authStore, log)

	uploader := upload.New(client, upload.Config{
		MaxSize:           cfg.UploadMaxSize,
		AllowedExtensions: cfg.AllowedExtensions,
		PollInterval:      cfg.ConvertPollInterval,
		PollTimeout:       cfg.ConvertTimeout,
	}, log)

	genStore := generation.NewStore(client, generation.NewSSEFactory(client, log), log)
	defer genStore.Reset()

	deps := &screens.Deps{
		Cfg:        cfg,
		Log:        log,
		Auth:       authStore,
		Prefs:      prefs.NewStore(prefsDir),
		API:        client,
		Uploader:   uploader,
		Generation: genStore,
		History:    hist,
	}

	return app.Run(deps)
}
