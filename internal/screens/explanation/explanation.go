// Package explanation implements the per-question rationale view. The
// explanations are fetched from the server; items are matched to them by
// question number so a wrong-answers-only view stays aligned.
package explanation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"quizdeck/internal/api"
	"quizdeck/internal/quiz"
	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	"quizdeck/internal/screens/login"
	"quizdeck/internal/ui/components"
	"quizdeck/internal/ui/layout"
	"quizdeck/internal/ui/theme"
)

// explanationsLoadedMsg carries the server response.
type explanationsLoadedMsg struct {
	Explanations []quiz.Explanation
	Err          error
}

// ExplanationScreen shows explanations for a solved quiz.
type ExplanationScreen struct {
	deps *screens.Deps

	problemSetID string
	items        []quiz.Item
	explanations []quiz.Explanation

	idx    int
	loaded bool
	errMsg string
}

var _ screen.Screen = (*ExplanationScreen)(nil)
var _ screen.KeyHintProvider = (*ExplanationScreen)(nil)

// New creates an ExplanationScreen. With wrongOnly set, only items that
// were not answered correctly are shown.
func New(deps *screens.Deps, problemSetID string, items []quiz.Item, wrongOnly bool) *ExplanationScreen {
	shown := items
	if wrongOnly {
		shown = nil
		for i := range items {
			if !items[i].AnsweredCorrectly() {
				shown = append(shown, items[i])
			}
		}
	}

	return &ExplanationScreen{
		deps:         deps,
		problemSetID: problemSetID,
		items:        shown,
	}
}

func (s *ExplanationScreen) Init() tea.Cmd {
	client := s.deps.API
	id := s.problemSetID
	return func() tea.Msg {
		exps, err := client.GetExplanations(context.Background(), id)
		return explanationsLoadedMsg{Explanations: exps, Err: err}
	}
}

func (s *ExplanationScreen) Title() string {
	return "Explanations"
}

func (s *ExplanationScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Question"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ExplanationScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case explanationsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				return s, tea.Batch(
					components.ShowToast("Your session expired. Sign in again.", components.ToastError),
					func() tea.Msg { return router.PushScreenMsg{Screen: login.New(s.deps)} },
				)
			}
			s.errMsg = msg.Err.Error()
		} else {
			s.explanations = msg.Explanations
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "left", "h":
			if s.idx > 0 {
				s.idx--
			}
		case "right", "l":
			if s.idx < len(s.items)-1 {
				s.idx++
			}
		}
	}
	return s, nil
}

func (s *ExplanationScreen) View(width, height int) string {
	if len(s.items) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Success).
			Render("\n\n  Everything answered correctly — nothing to explain!")
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Loading explanations...")
	}
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n  Could not load explanations: %s", s.errMsg))
	}

	item := s.items[s.idx]

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Question %d of %d", s.idx+1, len(s.items))))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", maxInt(width-4, 0))))
	b.WriteString("\n\n")

	review := components.NewChoiceList(item, true)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, review.View()))
	b.WriteString("\n")

	exp, ok := quiz.ExplanationFor(s.explanations, item.Number)
	if !ok {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render("No explanation available for this question."))
		return b.String()
	}

	expStyle := lipgloss.NewStyle().
		Width(minInt(width-8, 70)).
		Foreground(theme.Text)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, expStyle.Render(exp.Explanation)))

	if len(exp.ReferencedPages) > 0 {
		pages := make([]string, 0, len(exp.ReferencedPages))
		for _, p := range exp.ReferencedPages {
			pages = append(pages, fmt.Sprintf("%d", p))
		}
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("See pages " + strings.Join(pages, ", ")))
	}

	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
