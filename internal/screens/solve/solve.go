// Package solve implements the quiz-solving screen. In live mode it
// consumes the generation store and lets questions be answered while later
// ones are still arriving; in review mode it replays a finished quiz with
// the correct answers revealed.
package solve

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"quizdeck/internal/generation"
	"quizdeck/internal/history"
	"quizdeck/internal/quiz"
	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	"quizdeck/internal/screens/explanation"
	"quizdeck/internal/screens/result"
	"quizdeck/internal/ui/components"
	"quizdeck/internal/ui/layout"
)

// SolveScreen presents quiz items for answering, navigation, and marking.
type SolveScreen struct {
	deps *screens.Deps
	flow screens.Flow

	review  bool
	offline bool

	items        []quiz.Item
	problemSetID string
	sess         generation.Session

	idx    int
	choice components.ChoiceList

	recorded         bool
	confirmingFinish bool
	started          time.Time
}

var _ screen.Screen = (*SolveScreen)(nil)
var _ screen.KeyHintProvider = (*SolveScreen)(nil)

// New creates a live SolveScreen fed by the generation store.
func New(deps *screens.Deps, flow screens.Flow) *SolveScreen {
	s := &SolveScreen{
		deps:    deps,
		flow:    flow,
		started: time.Now(),
	}
	s.syncSession()
	return s
}

// NewResume creates a solvable SolveScreen over an already generated
// item set, for quizzes the user left before answering. No stream is
// attached; the items are final.
func NewResume(deps *screens.Deps, flow screens.Flow, problemSetID string, items []quiz.Item) *SolveScreen {
	s := &SolveScreen{
		deps:         deps,
		flow:         flow,
		offline:      true,
		problemSetID: problemSetID,
		items:        items,
		recorded:     true,
		started:      time.Now(),
		sess: generation.Session{
			ProblemSetID: problemSetID,
			State:        generation.StateCompleted,
			TotalCount:   len(items),
		},
	}
	s.rebuildChoice()
	return s
}

// NewReview creates a read-only SolveScreen over a finished quiz.
func NewReview(deps *screens.Deps, rec *history.Record) *SolveScreen {
	s := &SolveScreen{
		deps:         deps,
		review:       true,
		items:        rec.QuizData,
		problemSetID: rec.ProblemSetID,
		flow:         screens.Flow{FileName: rec.FileName},
	}
	s.rebuildChoice()
	return s
}

func (s *SolveScreen) Init() tea.Cmd {
	if s.review || s.offline {
		return nil
	}
	return s.listen()
}

func (s *SolveScreen) Title() string {
	if s.review {
		return "Review"
	}
	return "Solve"
}

func (s *SolveScreen) KeyHints() []layout.KeyHint {
	if s.confirmingFinish {
		return []layout.KeyHint{
			{Key: "Y", Description: "Finish anyway"},
			{Key: "N", Description: "Keep solving"},
		}
	}
	if s.review {
		return []layout.KeyHint{
			{Key: "←→", Description: "Question"},
			{Key: "E", Description: "Explanations"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "←→", Description: "Question"},
		{Key: "Enter", Description: "Answer"},
		{Key: "M", Description: "Mark"},
		{Key: "F", Description: "Finish"},
	}
}

// listen blocks until the generation store signals a change.
func (s *SolveScreen) listen() tea.Cmd {
	updates := s.deps.Generation.Updates()
	return func() tea.Msg {
		<-updates
		return sessionUpdateMsg{}
	}
}

// syncSession folds the latest store snapshot into the local items. Local
// answers survive because merging never replaces a known item.
func (s *SolveScreen) syncSession() {
	snap := s.deps.Generation.Snapshot()
	s.sess = snap
	s.items = quiz.Merge(s.items, snap.Items)
	if s.problemSetID == "" {
		s.problemSetID = snap.ProblemSetID
	}
	s.rebuildChoice()
}

func (s *SolveScreen) rebuildChoice() {
	if s.idx >= 0 && s.idx < len(s.items) {
		s.choice = components.NewChoiceList(s.items[s.idx], s.review)
	}
}

// recordCreated writes the created-status history record once the server
// has assigned a problem-set id.
func (s *SolveScreen) recordCreated() tea.Cmd {
	rec := history.Record{
		ProblemSetID:  s.problemSetID,
		FileName:      s.flow.FileName,
		FileSize:      s.flow.FileSize,
		QuestionCount: s.sess.TotalCount,
		QuizLevel:     s.flow.Options.DifficultyType,
		CreatedAt:     time.Now(),
		UploadedURL:   s.flow.UploadedURL,
		Status:        history.StatusCreated,
	}
	st := s.deps.History
	return func() tea.Msg {
		return historyRecordedMsg{Err: st.Upsert(context.Background(), rec)}
	}
}

func (s *SolveScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionUpdateMsg:
		return s.handleUpdate()

	case historyRecordedMsg:
		if msg.Err != nil {
			s.deps.Log.Warn("record quiz history", "error", msg.Err)
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SolveScreen) handleUpdate() (screen.Screen, tea.Cmd) {
	s.syncSession()

	var cmds []tea.Cmd
	if !s.recorded && s.problemSetID != "" {
		s.recorded = true
		cmds = append(cmds, s.recordCreated())
	}

	// Keep listening until the session reaches a terminal state.
	if s.sess.State != generation.StateCompleted && s.sess.State != generation.StateFailed {
		cmds = append(cmds, s.listen())
	}
	return s, tea.Batch(cmds...)
}

func (s *SolveScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmingFinish {
		switch key {
		case "y", "Y":
			s.confirmingFinish = false
			return s.finish()
		case "n", "N", "esc":
			s.confirmingFinish = false
		}
		return s, nil
	}

	// Failed session: any key goes back.
	if !s.review && s.sess.State == generation.StateFailed {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	switch key {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "left", "h":
		if s.idx > 0 {
			s.idx--
			s.rebuildChoice()
		}
		return s, nil
	case "right", "l":
		if s.idx < len(s.items)-1 {
			s.idx++
			s.rebuildChoice()
		}
		return s, nil
	}

	if s.review {
		if key == "e" || key == "E" {
			items := s.items
			return s, func() tea.Msg {
				return router.PushScreenMsg{
					Screen: explanation.New(s.deps, s.problemSetID, items, false),
				}
			}
		}
		return s, nil
	}

	switch key {
	case "enter":
		return s.answer()
	case "m", "M":
		if s.idx < len(s.items) {
			s.items[s.idx].Check = !s.items[s.idx].Check
			s.rebuildChoice()
		}
		return s, nil
	case "f", "F":
		if len(s.items) == 0 {
			return s, nil
		}
		if s.unanswered() > 0 || s.sess.Streaming() {
			s.confirmingFinish = true
			return s, nil
		}
		return s.finish()
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	return s, cmd
}

func (s *SolveScreen) answer() (screen.Screen, tea.Cmd) {
	if s.idx >= len(s.items) {
		return s, nil
	}
	sel := s.choice.CursorSelection()
	if sel == nil {
		return s, nil
	}
	id := sel.ID
	s.items[s.idx].UserAnswer = &id
	s.rebuildChoice()

	// Move on to the next question when there is one.
	if s.idx < len(s.items)-1 {
		s.idx++
		s.rebuildChoice()
	}
	return s, nil
}

func (s *SolveScreen) unanswered() int {
	n := 0
	for i := range s.items {
		if !s.items[i].Answered() {
			n++
		}
	}
	return n
}

func (s *SolveScreen) finish() (screen.Screen, tea.Cmd) {
	elapsed := time.Since(s.started)
	items := make([]quiz.Item, len(s.items))
	copy(items, s.items)

	if !s.offline {
		s.deps.Generation.Reset()
	}

	return s, func() tea.Msg {
		return router.PushScreenMsg{
			Screen: result.New(s.deps, s.flow, s.problemSetID, items, elapsed),
		}
	}
}
