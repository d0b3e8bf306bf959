// Package upload implements the document-picking screen: the user names a
// local file, which is validated and transferred before the quiz options
// are collected.
package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"quizdeck/internal/api"
	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	"quizdeck/internal/screens/login"
	"quizdeck/internal/screens/options"
	uploadsvc "quizdeck/internal/upload"
	"quizdeck/internal/ui/components"
	"quizdeck/internal/ui/layout"
	"quizdeck/internal/ui/theme"
)

// uploadDoneMsg is sent when the transfer (and conversion wait) finishes.
type uploadDoneMsg struct {
	URL string
	Err error
}

// UploadScreen asks for a file path and runs the upload.
type UploadScreen struct {
	deps      *screens.Deps
	input     components.TextInput
	uploading bool
	fileName  string
	errMsg    string
}

var _ screen.Screen = (*UploadScreen)(nil)
var _ screen.KeyHintProvider = (*UploadScreen)(nil)

// New creates an UploadScreen.
func New(deps *screens.Deps) *UploadScreen {
	return &UploadScreen{
		deps:  deps,
		input: components.NewTextInput("Path to your document (pdf, docx, pptx)...", false, 512),
	}
}

func (s *UploadScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *UploadScreen) Title() string {
	return "New quiz"
}

func (s *UploadScreen) KeyHints() []layout.KeyHint {
	if s.uploading {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Upload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *UploadScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadDoneMsg:
		return s.handleDone(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			if !s.uploading {
				return s.submit()
			}
			return s, nil
		}
	}

	if s.uploading {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *UploadScreen) submit() (screen.Screen, tea.Cmd) {
	path := strings.TrimSpace(s.input.Value())
	if path == "" {
		s.errMsg = "Enter a file path."
		return s, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		s.errMsg = "Cannot read that file: " + err.Error()
		return s, nil
	}
	if info.IsDir() {
		s.errMsg = "That is a directory, not a file."
		return s, nil
	}

	s.uploading = true
	s.errMsg = ""
	s.fileName = filepath.Base(path)

	uploader := s.deps.Uploader
	return s, func() tea.Msg {
		url, err := uploader.Upload(context.Background(), path)
		return uploadDoneMsg{URL: url, Err: err}
	}
}

func (s *UploadScreen) handleDone(msg uploadDoneMsg) (screen.Screen, tea.Cmd) {
	s.uploading = false

	if msg.Err != nil {
		var valErr *uploadsvc.ValidationError
		switch {
		case errors.Is(msg.Err, api.ErrUnauthorized):
			s.errMsg = "Your session expired. Sign in again."
			return s, tea.Batch(
				components.ShowToast(s.errMsg, components.ToastError),
				func() tea.Msg { return router.PushScreenMsg{Screen: login.New(s.deps)} },
			)
		case errors.As(msg.Err, &valErr):
			s.errMsg = valErr.Reason
		case errors.Is(msg.Err, uploadsvc.ErrConversionTimeout):
			s.errMsg = "The document is taking too long to convert. Try again in a moment."
		default:
			s.errMsg = "Upload failed: " + msg.Err.Error()
		}
		return s, components.ShowToast(s.errMsg, components.ToastError)
	}

	path := strings.TrimSpace(s.input.Value())
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	flow := screens.Flow{
		FilePath:    path,
		FileName:    s.fileName,
		FileSize:    size,
		UploadedURL: msg.URL,
	}

	return s, func() tea.Msg {
		return router.PushScreenMsg{Screen: options.New(s.deps, flow)}
	}
}

func (s *UploadScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Upload a study document"))
	b.WriteString("\n\n")

	if s.uploading {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Uploading " + s.fileName + "..."))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render("Non-PDF documents are converted first; this can take a minute."))
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Quizzes are generated from the pages of this document."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	b.WriteString("\n\n")

	btn := components.NewButton("Upload", strings.TrimSpace(s.input.Value()) != "")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, btn.View()))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(s.errMsg))
	}

	return b.String()
}
