package upload

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
	uploadsvc "quizdeck/internal/upload"
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

func TestUploadAuthExpiredRoutesToLogin(t *testing.T) {
	s := New(&screens.Deps{Log: logger.Nop()})
	s.uploading = true

	_, cmd := s.Update(uploadDoneMsg{Err: fmt.Errorf("presign: %w", api.ErrUnauthorized)})
	pushed := pushedScreen(t, cmd)
	if _, ok := pushed.(*login.LoginScreen); !ok {
		t.Fatalf("pushed %T, want *login.LoginScreen", pushed)
	}
}

func TestUploadValidationErrorStaysOnScreen(t *testing.T) {
	s := New(&screens.Deps{Log: logger.Nop()})
	s.uploading = true

	_, cmd := s.Update(uploadDoneMsg{Err: &uploadsvc.ValidationError{Reason: "file too large"}})
	if pushed := pushedScreen(t, cmd); pushed != nil {
		t.Fatalf("pushed %T, want no navigation on a validation error", pushed)
	}
	if s.errMsg != "file too large" {
		t.Errorf("errMsg = %q, want the validation reason", s.errMsg)
	}
}
