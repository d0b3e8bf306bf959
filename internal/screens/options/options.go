// Package options implements the quiz-configuration screen: question type,
// difficulty, and count. The last selection is remembered between runs.
package options

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	"quizdeck/internal/screens/pages"
	"quizdeck/internal/ui/layout"
	"quizdeck/internal/ui/theme"
)

// prefsKey is the blob the last-used options are remembered under.
const prefsKey = "quiz-options"

var (
	quizTypes    = []string{"multiple-choice", "true-false", "fill-in-blank"}
	difficulties = []string{"recall", "skills", "strategic"}
	counts       = []int{5, 10, 15, 20}
)

var typeLabels = map[string]string{
	"multiple-choice": "Multiple choice",
	"true-false":      "True / false",
	"fill-in-blank":   "Fill in the blank",
}

var difficultyLabels = map[string]string{
	"recall":    "Recall",
	"skills":    "Skills",
	"strategic": "Strategic",
}

const (
	rowType = iota
	rowDifficulty
	rowCount
)

// OptionsScreen lets the user pick the quiz shape before page selection.
type OptionsScreen struct {
	deps *screens.Deps
	flow screens.Flow

	row      int
	typeIdx  int
	diffIdx  int
	countIdx int
}

var _ screen.Screen = (*OptionsScreen)(nil)
var _ screen.KeyHintProvider = (*OptionsScreen)(nil)

// New creates an OptionsScreen, restoring the last-used selection when a
// fresh one exists in the preference store.
func New(deps *screens.Deps, flow screens.Flow) *OptionsScreen {
	s := &OptionsScreen{
		deps:     deps,
		flow:     flow,
		countIdx: 1, // default 10 questions
	}

	var saved screens.Options
	if deps.Prefs.Load(prefsKey, &saved) {
		if i := indexOf(quizTypes, saved.QuizType); i >= 0 {
			s.typeIdx = i
		}
		if i := indexOf(difficulties, saved.DifficultyType); i >= 0 {
			s.diffIdx = i
		}
		for i, c := range counts {
			if c == saved.QuizCount {
				s.countIdx = i
			}
		}
	}

	return s
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}

func (s *OptionsScreen) Init() tea.Cmd {
	return nil
}

func (s *OptionsScreen) Title() string {
	return "Quiz options"
}

func (s *OptionsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Row"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *OptionsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.row > rowType {
			s.row--
		}
	case "down", "j":
		if s.row < rowCount {
			s.row++
		}
	case "left", "h":
		s.shift(-1)
	case "right", "l":
		s.shift(1)
	case "enter":
		return s.confirm()
	}

	return s, nil
}

func (s *OptionsScreen) shift(delta int) {
	switch s.row {
	case rowType:
		s.typeIdx = clamp(s.typeIdx+delta, len(quizTypes))
	case rowDifficulty:
		s.diffIdx = clamp(s.diffIdx+delta, len(difficulties))
	case rowCount:
		s.countIdx = clamp(s.countIdx+delta, len(counts))
	}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (s *OptionsScreen) selection() screens.Options {
	return screens.Options{
		QuizType:       quizTypes[s.typeIdx],
		DifficultyType: difficulties[s.diffIdx],
		QuizCount:      counts[s.countIdx],
	}
}

func (s *OptionsScreen) confirm() (screen.Screen, tea.Cmd) {
	opts := s.selection()
	if err := s.deps.Prefs.Save(prefsKey, opts); err != nil {
		s.deps.Log.Warn("save options prefs", "error", err)
	}

	flow := s.flow
	flow.Options = opts

	return s, func() tea.Msg {
		return router.PushScreenMsg{Screen: pages.New(s.deps, flow)}
	}
}

func (s *OptionsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Configure your quiz"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(s.flow.FileName))
	b.WriteString("\n\n")

	b.WriteString(s.renderRow(width, rowType, "Question type", typeLabels[quizTypes[s.typeIdx]]))
	b.WriteString(s.renderRow(width, rowDifficulty, "Difficulty", difficultyLabels[difficulties[s.diffIdx]]))
	b.WriteString(s.renderRow(width, rowCount, "Questions", fmt.Sprintf("%d", counts[s.countIdx])))

	return b.String()
}

func (s *OptionsScreen) renderRow(width, row int, label, value string) string {
	line := fmt.Sprintf("%-16s ◂ %s ▸", label, value)
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if row == s.row {
		style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		line = "▸ " + line
	} else {
		line = "  " + line
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)) + "\n\n"
}
