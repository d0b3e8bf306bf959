// Package login implements the sign-in screen. The user pastes an access
// token issued by the web app; the screen rejects expired tokens before
// saving anything.
package login

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"quizdeck/internal/auth"
	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	"quizdeck/internal/ui/components"
	"quizdeck/internal/ui/layout"
	"quizdeck/internal/ui/theme"
)

// LoginScreen collects and validates an access token.
type LoginScreen struct {
	deps   *screens.Deps
	input  components.TextInput
	errMsg string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen.
func New(deps *screens.Deps) *LoginScreen {
	return &LoginScreen{
		deps:  deps,
		input: components.NewTextInput("Paste your access token...", false, 2048),
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *LoginScreen) Title() string {
	return "Sign in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Sign in"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			return s.submit()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *LoginScreen) submit() (screen.Screen, tea.Cmd) {
	token := strings.TrimSpace(s.input.Value())
	if token == "" {
		s.errMsg = "Token is empty."
		return s, nil
	}
	if auth.TokenExpired(token, time.Now()) {
		s.errMsg = "That token has expired. Sign in on the web app and copy a fresh one."
		return s, nil
	}

	if err := s.deps.Auth.Set(auth.Credentials{AccessToken: token}); err != nil {
		s.errMsg = "Could not save credentials: " + err.Error()
		return s, nil
	}

	s.deps.Log.Info("signed in")
	s.input.Reset()
	return s, tea.Batch(
		components.ShowToast("Signed in.", components.ToastInfo),
		func() tea.Msg { return router.PopScreenMsg{} },
	)
}

func (s *LoginScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Sign in with an access token"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Open the web app, copy your access token, and paste it below."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	b.WriteString("\n\n")

	btn := components.NewButton("Sign in", strings.TrimSpace(s.input.Value()) != "")
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
