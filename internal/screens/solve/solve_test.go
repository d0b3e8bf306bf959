package solve

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"quizdeck/internal/api"
	"quizdeck/internal/generation"
	"quizdeck/internal/history"
	"quizdeck/internal/logger"
	"quizdeck/internal/quiz"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
)

type stubSvc struct{}

func (stubSvc) StartGeneration(context.Context, api.GenerationRequest) error { return nil }
func (stubSvc) RefreshToken(context.Context) error                           { return nil }

type stubFactory struct{}

func (stubFactory) Open(context.Context, string) (generation.Stream, error) {
	return stubStream{}, nil
}

type stubStream struct{}

func (stubStream) Events() <-chan generation.Event { return nil }
func (stubStream) Close()                          {}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testItems() []quiz.Item {
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

func testSolveScreen() *SolveScreen {
	deps := &screens.Deps{
		Log:        logger.Nop(),
		Generation: generation.NewStore(stubSvc{}, stubFactory{}, logger.Nop()),
	}
	s := New(deps, screens.Flow{FileName: "notes.pdf"})
	s.items = testItems()
	s.sess = generation.Session{State: generation.StateCompleted, TotalCount: 2}
	s.rebuildChoice()
	return s
}

func TestAnswerRecordsSelectionAndAdvances(t *testing.T) {
	s := testSolveScreen()

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('j')) // cursor to second selection
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	ss := scr.(*SolveScreen)

	if ss.items[0].UserAnswer == nil || *ss.items[0].UserAnswer != 1 {
		t.Fatalf("UserAnswer = %v, want 1", ss.items[0].UserAnswer)
	}
	if ss.idx != 1 {
		t.Errorf("idx = %d, want 1 after answering", ss.idx)
	}
}

func TestAnswerAcceptsZeroSelectionID(t *testing.T) {
	s := testSolveScreen()

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	ss := scr.(*SolveScreen)

	if ss.items[0].UserAnswer == nil || *ss.items[0].UserAnswer != 0 {
		t.Fatalf("UserAnswer = %v, want 0", ss.items[0].UserAnswer)
	}
	if !ss.items[0].Answered() {
		t.Error("item with selection id 0 should count as answered")
	}
}

func TestMarkToggles(t *testing.T) {
	s := testSolveScreen()

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('m'))
	ss := scr.(*SolveScreen)
	if !ss.items[0].Check {
		t.Fatal("expected item to be marked")
	}

	scr, _ = ss.Update(keyPress('m'))
	ss = scr.(*SolveScreen)
	if ss.items[0].Check {
		t.Error("expected mark to toggle off")
	}
}

func TestNavigationStaysInBounds(t *testing.T) {
	s := testSolveScreen()

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('h'))
	ss := scr.(*SolveScreen)
	if ss.idx != 0 {
		t.Errorf("idx = %d, want 0 at left edge", ss.idx)
	}

	scr, _ = ss.Update(keyPress('l'))
	scr, _ = scr.(*SolveScreen).Update(keyPress('l'))
	ss = scr.(*SolveScreen)
	if ss.idx != 1 {
		t.Errorf("idx = %d, want 1 at right edge", ss.idx)
	}
}

func TestFinishWithUnansweredAsksFirst(t *testing.T) {
	s := testSolveScreen()

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('f'))
	ss := scr.(*SolveScreen)
	if !ss.confirmingFinish {
		t.Fatal("expected finish confirmation with unanswered items")
	}

	scr, _ = ss.Update(keyPress('n'))
	ss = scr.(*SolveScreen)
	if ss.confirmingFinish {
		t.Error("expected N to cancel the confirmation")
	}

	scr, _ = ss.Update(keyPress('f'))
	_, cmd := scr.(*SolveScreen).Update(keyPress('y'))
	if cmd == nil {
		t.Error("expected a navigation command after confirming finish")
	}
}

func TestFinishDirectWhenAllAnswered(t *testing.T) {
	s := testSolveScreen()
	for i := range s.items {
		id := s.items[i].Selections[0].ID
		s.items[i].UserAnswer = &id
	}

	var scr screen.Screen = s
	ss, cmd := scr.Update(keyPress('f'))
	if ss.(*SolveScreen).confirmingFinish {
		t.Error("expected no confirmation when everything is answered")
	}
	if cmd == nil {
		t.Error("expected a navigation command")
	}
}

func TestSyncPreservesLocalAnswers(t *testing.T) {
	s := testSolveScreen()
	id := 1
	s.items[0].UserAnswer = &id

	// A redelivered snapshot of the same items must not wipe the answer.
	merged := quiz.Merge(s.items, testItems())
	if merged[0].UserAnswer == nil || *merged[0].UserAnswer != 1 {
		t.Error("expected merge to keep the local answer")
	}
	if len(merged) != 2 {
		t.Errorf("len = %d, want 2", len(merged))
	}
}

func TestReviewModeDoesNotAnswer(t *testing.T) {
	rec := &history.Record{
		ProblemSetID: "ps-1",
		FileName:     "notes.pdf",
		QuizData:     testItems(),
	}
	deps := &screens.Deps{Log: logger.Nop()}
	s := NewReview(deps, rec)

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	ss := scr.(*SolveScreen)
	if ss.items[0].UserAnswer != nil {
		t.Error("review mode must not record answers")
	}
}

func TestResumeIsSolvable(t *testing.T) {
	deps := &screens.Deps{Log: logger.Nop()}
	s := NewResume(deps, screens.Flow{FileName: "notes.pdf"}, "ps-1", testItems())

	if s.Title() != "Solve" {
		t.Fatalf("Title = %q, want Solve", s.Title())
	}
	if cmd := s.Init(); cmd != nil {
		t.Error("a resumed quiz has no stream to wait on")
	}

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	ss := scr.(*SolveScreen)
	if ss.items[0].UserAnswer == nil || *ss.items[0].UserAnswer != 0 {
		t.Fatalf("UserAnswer = %v, want 0", ss.items[0].UserAnswer)
	}
}

func TestResumeFinishLeavesGenerationAlone(t *testing.T) {
	// Generation is nil: finishing a resumed quiz must not reach for the
	// store another generation might be using.
	deps := &screens.Deps{Log: logger.Nop()}
	s := NewResume(deps, screens.Flow{FileName: "notes.pdf"}, "ps-1", testItems())
	for i := range s.items {
		id := s.items[i].Selections[0].ID
		s.items[i].UserAnswer = &id
	}

	var scr screen.Screen = s
	_, cmd := scr.Update(keyPress('f'))
	if cmd == nil {
		t.Fatal("expected a navigation command")
	}
}

func TestWaitingViewBeforeFirstItem(t *testing.T) {
	deps := &screens.Deps{
		Log:        logger.Nop(),
		Generation: generation.NewStore(stubSvc{}, stubFactory{}, logger.Nop()),
	}
	s := New(deps, screens.Flow{FileName: "notes.pdf"})
	s.sess = generation.Session{State: generation.StateStarting}

	view := s.View(80, 24)
	if view == "" {
		t.Error("expected non-empty waiting view")
	}
}
