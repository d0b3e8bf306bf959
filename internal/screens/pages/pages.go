// Package pages implements the target-page selection screen, the last step
// before generation starts.
package pages

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"quizdeck/internal/api"
	"quizdeck/internal/generation"
	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	"quizdeck/internal/screens/login"
	"quizdeck/internal/screens/solve"
	"quizdeck/internal/ui/components"
	"quizdeck/internal/ui/layout"
	"quizdeck/internal/ui/theme"
)

// prefsKey remembers the last page selection text between runs.
const prefsKey = "page-selection"

// startedMsg reports the outcome of kicking off generation.
type startedMsg struct {
	Err error
}

// PagesScreen collects the page selection and starts generation.
type PagesScreen struct {
	deps     *screens.Deps
	flow     screens.Flow
	input    components.TextInput
	starting bool
	errMsg   string
}

var _ screen.Screen = (*PagesScreen)(nil)
var _ screen.KeyHintProvider = (*PagesScreen)(nil)

// New creates a PagesScreen, restoring the last selection text when a
// fresh one exists.
func New(deps *screens.Deps, flow screens.Flow) *PagesScreen {
	input := components.NewTextInput("e.g. 1-5, 8, 12-14", false, 128)

	var saved string
	if deps.Prefs.Load(prefsKey, &saved) && saved != "" {
		input.Model.SetValue(saved)
	}

	return &PagesScreen{
		deps:  deps,
		flow:  flow,
		input: input,
	}
}

func (s *PagesScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *PagesScreen) Title() string {
	return "Pages"
}

func (s *PagesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Generate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PagesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			if !s.starting {
				return s.submit()
			}
			return s, nil
		}
	}

	if s.starting {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *PagesScreen) submit() (screen.Screen, tea.Cmd) {
	raw := strings.TrimSpace(s.input.Value())
	parsed, err := ParsePages(raw)
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}

	if err := s.deps.Prefs.Save(prefsKey, raw); err != nil {
		s.deps.Log.Warn("save page prefs", "error", err)
	}

	s.flow.Pages = parsed
	s.starting = true
	s.errMsg = ""

	store := s.deps.Generation
	req := generation.Request{
		UploadedURL:    s.flow.UploadedURL,
		QuizCount:      s.flow.Options.QuizCount,
		QuizType:       s.flow.Options.QuizType,
		DifficultyType: s.flow.Options.DifficultyType,
		PageNumbers:    parsed,
	}

	return s, func() tea.Msg {
		return startedMsg{Err: store.Start(context.Background(), req)}
	}
}

func (s *PagesScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	s.starting = false

	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			s.errMsg = "Your session expired. Sign in again."
			return s, tea.Batch(
				components.ShowToast(s.errMsg, components.ToastError),
				func() tea.Msg { return router.PushScreenMsg{Screen: login.New(s.deps)} },
			)
		}
		var valErr *generation.ValidationError
		if errors.As(msg.Err, &valErr) {
			s.errMsg = valErr.Reason
			return s, components.ShowToast(valErr.Reason, components.ToastError)
		}
		s.errMsg = msg.Err.Error()
		return s, components.ShowToast(s.errMsg, components.ToastError)
	}

	// Generation is underway (or has already failed terminally); either
	// way the solve screen renders the session state.
	return s, func() tea.Msg {
		return router.PushScreenMsg{Screen: solve.New(s.deps, s.flow)}
	}
}

func (s *PagesScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Which pages should the quiz cover?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(s.flow.FileName))
	b.WriteString("\n\n")

	if s.starting {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Starting generation..."))
		return b.String()
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Italic(true).
		Render("Comma-separated pages and ranges."))

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
