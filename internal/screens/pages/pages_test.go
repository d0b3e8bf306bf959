package pages

import (
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"

	"quizdeck/internal/api"
	"quizdeck/internal/logger"
	"quizdeck/internal/router"
	"quizdeck/internal/screen"
	"quizdeck/internal/screens"
	"quizdeck/internal/screens/login"
	"quizdeck/internal/ui/components"
)

// pushedScreen runs cmd (unwrapping batches) and returns the screen it
// pushes onto the router, or nil when nothing is pushed.
func pushedScreen(t *testing.T, cmd tea.Cmd) screen.Screen {
	t.Helper()
	if cmd == nil {
		return nil
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
	return nil
}

func testPagesScreen() *PagesScreen {
	return &PagesScreen{
		deps:  &screens.Deps{Log: logger.Nop()},
		input: components.NewTextInput("", false, 128),
	}
}

func TestStartAuthExpiredRoutesToLogin(t *testing.T) {
	s := testPagesScreen()
	s.starting = true

	_, cmd := s.Update(startedMsg{Err: fmt.Errorf("start generation: %w", api.ErrUnauthorized)})
	pushed := pushedScreen(t, cmd)
	if _, ok := pushed.(*login.LoginScreen); !ok {
		t.Fatalf("pushed %T, want *login.LoginScreen", pushed)
	}
}
