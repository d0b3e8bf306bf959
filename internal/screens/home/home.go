// Package home implements the main menu screen.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	histstore "quizdeck/internal/history"
	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	historyscreen "quizdeck/internal/screens/history"
	"quizdeck/internal/screens/login"
	uploadscreen "quizdeck/internal/screens/upload"
	"quizdeck/internal/ui/components"
	"quizdeck/internal/ui/theme"
)

// statsLoadedMsg carries the aggregate history stats for the stats bar.
type statsLoadedMsg struct {
	Stats histstore.Stats
	Err   error
}

// signedOutMsg confirms the credential wipe.
type signedOutMsg struct {
	Err error
}

// HomeScreen is the root menu of the application.
type HomeScreen struct {
	deps  *screens.Deps
	menu  components.Menu
	stats histstore.Stats
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a HomeScreen.
func New(deps *screens.Deps) *HomeScreen {
	s := &HomeScreen{deps: deps}
	s.rebuildMenu()
	return s
}

// rebuildMenu recomputes the menu for the current sign-in state.
func (h *HomeScreen) rebuildMenu() {
	signedIn := h.deps.Auth.Get() != nil

	items := []components.MenuItem{
		{Label: "NEW QUIZ", Action: func() tea.Cmd {
			if h.deps.Auth.Get() == nil {
				return tea.Batch(
					components.ShowToast("Sign in first.", components.ToastError),
					func() tea.Msg {
						return router.PushScreenMsg{Screen: login.New(h.deps)}
					},
				)
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: uploadscreen.New(h.deps)}
			}
		}},
		{Label: "HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: historyscreen.New(h.deps)}
			}
		}},
	}

	if signedIn {
		items = append(items, components.MenuItem{Label: "SIGN OUT", Action: func() tea.Cmd {
			authStore := h.deps.Auth
			return func() tea.Msg {
				return signedOutMsg{Err: authStore.Clear()}
			}
		}})
	} else {
		items = append(items, components.MenuItem{Label: "SIGN IN", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: login.New(h.deps)}
			}
		}})
	}

	items = append(items, components.MenuItem{Label: "EXIT", Action: func() tea.Cmd {
		return tea.Quit
	}})

	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected < len(items) {
		h.menu.Selected = selected
	}
}

// Init refreshes the menu and stats. The router re-runs it whenever the
// home screen is revealed, so both stay current after a quiz or sign-in.
func (h *HomeScreen) Init() tea.Cmd {
	h.rebuildMenu()

	st := h.deps.History
	return func() tea.Msg {
		stats, err := st.Stats(context.Background())
		return statsLoadedMsg{Stats: stats, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.Err == nil {
			h.stats = msg.Stats
		}
		return h, nil

	case signedOutMsg:
		h.rebuildMenu()
		if msg.Err != nil {
			return h, components.ShowToast("Sign out failed: "+msg.Err.Error(), components.ToastError)
		}
		return h, components.ShowToast("Signed out.", components.ToastInfo)
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(theme.Title.Width(width).Render("QUIZDECK"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Turn your study documents into quizzes"))
	b.WriteString("\n\n")

	if h.stats.Total > 0 {
		statsLine := fmt.Sprintf("%d quizzes  ·  %d completed  ·  avg score %.0f%%",
			h.stats.Total, h.stats.Completed, h.stats.AverageScore)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(statsLine)))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	return b.String()
}

func (h *HomeScreen) Title() string {
	return "Home"
}
