package history

import (
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"

	"quizdeck/internal/api"
	histstore "quizdeck/internal/history"
	"quizdeck/internal/logger"
	"quizdeck/internal/quiz"
	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	"quizdeck/internal/screens/login"
	"quizdeck/internal/screens/solve"
)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testQuiz() []quiz.Item {
	return []quiz.Item{
		{Number: 1, Title: "q1", Selections: []quiz.Selection{
			{ID: 0, Content: "a", Correct: true},
			{ID: 1, Content: "b"},
		}},
		{Number: 2, Title: "q2", Selections: []quiz.Selection{
			{ID: 10, Content: "a"},
			{ID: 11, Content: "b", Correct: true},
		}},
	}
}

// pushedScreen runs cmd (unwrapping batches) and returns the screen it
// pushes onto the router.
func pushedScreen(t *testing.T, cmd tea.Cmd) screen.Screen {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msgs := []tea.Msg{cmd()}
	for len(msgs) > 0 {
		msg := msgs[0]
		msgs = msgs[1:]
		switch m := msg.(type) {
		case router.PushScreenMsg:
			return m.Screen
		case tea.BatchMsg:
			for _, c := range m {
				if c != nil {
					msgs = append(msgs, c())
				}
			}
		}
	}
	t.Fatal("no screen was pushed")
	return nil
}

func TestResumeUnsolvedCompletedSetIsSolvable(t *testing.T) {
	s := New(&screens.Deps{Log: logger.Nop()})
	rec := &histstore.Record{
		ProblemSetID:  "ps-1",
		FileName:      "notes.pdf",
		QuestionCount: 2,
		Status:        histstore.StatusCreated,
	}
	resp := &api.ProblemSetResponse{
		ProblemSetID: "ps-1",
		Status:       api.ProblemSetCompleted,
		Quiz:         testQuiz(),
	}

	_, cmd := s.Update(resumeMsg{Record: rec, Resp: resp})
	pushed := pushedScreen(t, cmd)
	sv, ok := pushed.(*solve.SolveScreen)
	if !ok {
		t.Fatalf("pushed %T, want *solve.SolveScreen", pushed)
	}
	// The record was never solved, so the screen must accept answers
	// rather than reveal them.
	if sv.Title() != "Solve" {
		t.Fatalf("Title = %q, want Solve", sv.Title())
	}
}

func TestOpenCompletedRecordReviews(t *testing.T) {
	s := New(&screens.Deps{Log: logger.Nop()})
	score := 80
	s.loaded = true
	s.records = []histstore.Record{{
		ProblemSetID: "ps-1",
		FileName:     "notes.pdf",
		Status:       histstore.StatusCompleted,
		Score:        &score,
		QuizData:     testQuiz(),
	}}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	pushed := pushedScreen(t, cmd)
	if pushed.Title() != "Review" {
		t.Fatalf("Title = %q, want Review", pushed.Title())
	}
}

func TestResumeAuthExpiredRoutesToLogin(t *testing.T) {
	s := New(&screens.Deps{Log: logger.Nop()})
	rec := &histstore.Record{ProblemSetID: "ps-1", Status: histstore.StatusCreated}

	_, cmd := s.Update(resumeMsg{
		Record: rec,
		Err:    fmt.Errorf("get problem set: %w", api.ErrUnauthorized),
	})
	pushed := pushedScreen(t, cmd)
	if _, ok := pushed.(*login.LoginScreen); !ok {
		t.Fatalf("pushed %T, want *login.LoginScreen", pushed)
	}
}
