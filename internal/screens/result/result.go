// Package result implements the scoring screen shown after a quiz is
// finished. The completion is merged into the history record as a side
// effect of entering the screen.
package result

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"quizdeck/internal/history"
	"quizdeck/internal/quiz"
	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	"quizdeck/internal/screens/explanation"
	"quizdeck/internal/ui/layout"
	"quizdeck/internal/ui/theme"
)

// completionSavedMsg confirms the history update.
type completionSavedMsg struct {
	Err error
}

// ResultScreen shows the score and offers the explanation view.
type ResultScreen struct {
	deps *screens.Deps
	flow screens.Flow

	problemSetID string
	items        []quiz.Item
	elapsed      time.Duration
	score        quiz.Result
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a ResultScreen and scores the items.
func New(deps *screens.Deps, flow screens.Flow, problemSetID string, items []quiz.Item, elapsed time.Duration) *ResultScreen {
	return &ResultScreen{
		deps:         deps,
		flow:         flow,
		problemSetID: problemSetID,
		items:        items,
		elapsed:      elapsed,
		score:        quiz.Score(items),
	}
}

func (s *ResultScreen) Init() tea.Cmd {
	if s.problemSetID == "" {
		return nil
	}

	score := s.score.ScorePercent
	correct := s.score.CorrectCount
	total := s.score.TotalQuestions
	now := time.Now()
	elapsed := s.elapsed
	st := s.deps.History
	id := s.problemSetID
	items := s.items

	return func() tea.Msg {
		err := st.Update(context.Background(), id, history.CompletionPatch{
			Status:         history.StatusCompleted,
			Score:          &score,
			CorrectCount:   &correct,
			TotalQuestions: &total,
			TotalTime:      &elapsed,
			CompletedAt:    &now,
			QuizData:       items,
		})
		return completionSavedMsg{Err: err}
	}
}

func (s *ResultScreen) Title() string {
	return "Result"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "E", Description: "Explanations"},
		{Key: "Enter", Description: "Home"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case completionSavedMsg:
		if msg.Err != nil {
			s.deps.Log.Warn("save quiz completion", "error", msg.Err)
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "e", "E":
			items := s.items
			return s, func() tea.Msg {
				return router.PushScreenMsg{
					Screen: explanation.New(s.deps, s.problemSetID, items, true),
				}
			}
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Quiz complete"))
	b.WriteString("\n\n")

	scoreStyle := lipgloss.NewStyle().Foreground(theme.Success)
	if s.score.ScorePercent < 60 {
		scoreStyle = lipgloss.NewStyle().Foreground(theme.Error)
	} else if s.score.ScorePercent < 80 {
		scoreStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		scoreStyle.Bold(true).Render(fmt.Sprintf("%d%%", s.score.ScorePercent))))
	b.WriteString("\n\n")

	mins := int(s.elapsed.Minutes())
	secs := int(s.elapsed.Seconds()) % 60
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d of %d correct  ·  %d:%02d",
			s.score.CorrectCount, s.score.TotalQuestions, mins, secs)))

	wrong := s.score.TotalQuestions - s.score.CorrectCount
	if wrong > 0 {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render(fmt.Sprintf("Press E to see explanations for the %d you missed.", wrong)))
	}

	return b.String()
}
