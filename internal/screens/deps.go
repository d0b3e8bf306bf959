// Package screens holds the shared wiring passed to every screen: the
// service dependencies and the in-flight quiz setup carried across the
// upload → options → pages → solve flow.
package screens

import (
	"quizdeck/internal/api"
	"quizdeck/internal/auth"
	"quizdeck/internal/config"
	"quizdeck/internal/generation"
	"quizdeck/internal/history"
	"quizdeck/internal/logger"
	"quizdeck/internal/prefs"
	"quizdeck/internal/upload"
)

// Deps bundles the services screens depend on. Constructed once at startup
// and shared; individual screens take only what they use.
type Deps struct {
	Cfg        *config.Config
	Log        *logger.Logger
	Auth       *auth.Store
	Prefs      *prefs.Store
	API        *api.Client
	Uploader   *upload.Uploader
	Generation *generation.Store
	History    *history.Store
}

// Options is the user's quiz configuration.
type Options struct {
	QuizType       string `json:"quizType"`
	DifficultyType string `json:"difficultyType"`
	QuizCount      int    `json:"quizCount"`
}

// Flow accumulates the quiz setup as the user moves through the new-quiz
// screens. Each screen fills in its part and hands the value forward.
type Flow struct {
	FilePath    string
	FileName    string
	FileSize    int64
	UploadedURL string
	Options     Options
	Pages       []int
}
