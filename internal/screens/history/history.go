// Package history implements the past-quizzes screen: listing, aggregate
// stats, review of finished quizzes, resuming in-progress ones, and
// deletion.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"quizdeck/internal/api"
	histstore "quizdeck/internal/history"
	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	"quizdeck/internal/screens/login"
	"quizdeck/internal/screens/solve"
	"quizdeck/internal/ui/components"
	"quizdeck/internal/ui/layout"
	"quizdeck/internal/ui/theme"
)

type loadedMsg struct {
	Records []histstore.Record
	Stats   histstore.Stats
	Err     error
}

type resumeMsg struct {
	Record *histstore.Record
	Resp   *api.ProblemSetResponse
	Err    error
}

type mutatedMsg struct {
	Err error
}

// confirm targets.
const (
	confirmNone = iota
	confirmDelete
	confirmClear
)

// HistoryScreen lists remembered quizzes.
type HistoryScreen struct {
	deps *screens.Deps

	records  []histstore.Record
	stats    histstore.Stats
	selected int
	loaded   bool
	resuming bool
	confirm  int
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen.
func New(deps *screens.Deps) *HistoryScreen {
	return &HistoryScreen{deps: deps}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	st := s.deps.History
	return func() tea.Msg {
		ctx := context.Background()
		records, err := st.List(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		stats, err := st.Stats(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Records: records, Stats: stats}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.confirm != confirmNone {
		return []layout.KeyHint{
			{Key: "Y", Description: "Confirm"},
			{Key: "N", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "D", Description: "Delete"},
		{Key: "C", Description: "Clear all"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Records
			s.stats = msg.Stats
			if s.selected >= len(s.records) && s.selected > 0 {
				s.selected = len(s.records) - 1
			}
		}
		return s, nil

	case resumeMsg:
		return s.handleResume(msg)

	case mutatedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, s.load()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *HistoryScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirm != confirmNone {
		switch key {
		case "y", "Y":
			target := s.confirm
			s.confirm = confirmNone
			return s, s.mutate(target)
		case "n", "N", "esc":
			s.confirm = confirmNone
		}
		return s, nil
	}

	switch key {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.records)-1 {
			s.selected++
		}
	case "enter":
		return s.open()
	case "d", "D":
		if len(s.records) > 0 {
			s.confirm = confirmDelete
		}
	case "c", "C":
		if len(s.records) > 0 {
			s.confirm = confirmClear
		}
	}
	return s, nil
}

func (s *HistoryScreen) mutate(target int) tea.Cmd {
	st := s.deps.History
	if target == confirmClear {
		return func() tea.Msg {
			return mutatedMsg{Err: st.Clear(context.Background())}
		}
	}
	if s.selected >= len(s.records) {
		return nil
	}
	id := s.records[s.selected].ProblemSetID
	return func() tea.Msg {
		return mutatedMsg{Err: st.Remove(context.Background(), id)}
	}
}

// open reviews a completed quiz directly, or fetches the current server
// state for an unfinished one.
func (s *HistoryScreen) open() (screen.Screen, tea.Cmd) {
	if s.resuming || s.selected >= len(s.records) {
		return s, nil
	}
	rec := s.records[s.selected]

	if rec.Status == histstore.StatusCompleted {
		r := rec
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: solve.NewReview(s.deps, &r)}
		}
	}

	s.resuming = true
	client := s.deps.API
	r := rec
	return s, func() tea.Msg {
		resp, err := client.GetProblemSet(context.Background(), r.ProblemSetID)
		return resumeMsg{Record: &r, Resp: resp, Err: err}
	}
}

func (s *HistoryScreen) handleResume(msg resumeMsg) (screen.Screen, tea.Cmd) {
	s.resuming = false

	if msg.Err != nil {
		s.errMsg = ""
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			return s, tea.Batch(
				components.ShowToast("Your session expired. Sign in again.", components.ToastError),
				func() tea.Msg { return router.PushScreenMsg{Screen: login.New(s.deps)} },
			)
		}
		return s, components.ShowToast("Could not load that quiz: "+msg.Err.Error(), components.ToastError)
	}

	rec := msg.Record
	resp := msg.Resp
	flow := screens.Flow{
		FileName:    rec.FileName,
		FileSize:    rec.FileSize,
		UploadedURL: rec.UploadedURL,
		Options:     screens.Options{DifficultyType: rec.QuizLevel, QuizCount: rec.QuestionCount},
	}

	if resp.Status == api.ProblemSetGenerating && resp.SessionID != "" {
		err := s.deps.Generation.Reconnect(context.Background(), resp.SessionID, resp.ProblemSetID, resp.Quiz, resp.TotalCount)
		if err != nil {
			return s, components.ShowToast("Could not reattach to generation: "+err.Error(), components.ToastError)
		}
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: solve.New(s.deps, flow)}
		}
	}

	// Generation already finished server-side; the record is still in
	// created status, so the user solves the full set offline.
	if resp.Status == api.ProblemSetCompleted && len(resp.Quiz) > 0 {
		quizItems := resp.Quiz
		problemSetID := resp.ProblemSetID
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: solve.NewResume(s.deps, flow, problemSetID, quizItems)}
		}
	}

	return s, components.ShowToast("That quiz has no questions yet. Try again shortly.", components.ToastInfo)
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quizzes yet. Upload a document to make one!")
	}

	var b strings.Builder
	b.WriteString("\n")

	statsLine := fmt.Sprintf("%d quizzes  ·  %d completed (%.0f%%)  ·  avg score %.0f%%",
		s.stats.Total, s.stats.Completed, s.stats.CompletionRate*100, s.stats.AverageScore)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Secondary).Render(statsLine)))
	b.WriteString("\n\n")

	if s.confirm != confirmNone {
		prompt := "Delete this quiz? [Y/N]"
		if s.confirm == confirmClear {
			prompt = "Delete ALL history? [Y/N]"
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(prompt)))
		b.WriteString("\n\n")
	}

	for i, rec := range s.records {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		status := lipgloss.NewStyle().Foreground(theme.Accent).Render("in progress")
		if rec.Status == histstore.StatusCompleted && rec.Score != nil {
			status = lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("%d%%", *rec.Score))
		}

		line := fmt.Sprintf("%s%s  %s  %d questions  %s",
			prefix, rec.CreatedAt.Format("Jan 02, 2006"), rec.FileName, rec.QuestionCount, status)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}
