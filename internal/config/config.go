package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// APIBaseURL is the quiz service endpoint.
	APIBaseURL string

	// UploadMaxSize is the file size ceiling in bytes.
	UploadMaxSize int64

	// AllowedExtensions lists accepted upload file extensions (lowercase,
	// with the leading dot).
	AllowedExtensions []string

	// HistoryMax caps the number of retained history records.
	HistoryMax int

	// ConvertPollInterval is the delay between conversion-status checks.
	ConvertPollInterval time.Duration

	// ConvertTimeout bounds the conversion poll loop.
	ConvertTimeout time.Duration

	// LogMode selects the zap config ("dev" or "prod").
	LogMode string

	// LogPath is the log file location.
	LogPath string
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is loaded first when
// present (missing file is not an error).
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIBaseURL:          getEnv("QUIZDECK_API_URL", "http://localhost:8080"),
		UploadMaxSize:       getEnvInt64("QUIZDECK_UPLOAD_MAX_BYTES", 50*1024*1024),
		AllowedExtensions:   []string{".pdf", ".ppt", ".pptx", ".doc", ".docx"},
		HistoryMax:          getEnvInt("QUIZDECK_HISTORY_MAX", 20),
		ConvertPollInterval: 3 * time.Second,
		ConvertTimeout:      60 * time.Second,
		LogMode:             getEnv("QUIZDECK_LOG_MODE", "dev"),
		LogPath:             defaultLogPath(),
	}
}

// defaultLogPath resolves the log file path in priority order:
// 1. QUIZDECK_LOG environment variable
// 2. $XDG_STATE_HOME/quizdeck/quizdeck.log
// 3. ~/.local/state/quizdeck/quizdeck.log
func defaultLogPath() string {
	if p := os.Getenv("QUIZDECK_LOG"); p != "" {
		return p
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "quizdeck.log"
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "quizdeck", "quizdeck.log")
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
