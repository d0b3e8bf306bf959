package components

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"quizdeck/internal/ui/theme"
)

const toastDuration = 4 * time.Second

// ToastKind selects the toast styling.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastError
)

// ShowToastMsg asks the app to display a transient notification.
type ShowToastMsg struct {
	Message string
	Kind    ToastKind
}

// dismissToastMsg clears a toast. The sequence number ties the dismissal to
// the toast that scheduled it, so a newer toast is not cleared by an older
// toast's timer.
type dismissToastMsg struct {
	seq int
}

// ShowToast returns a command that displays a transient notification.
func ShowToast(message string, kind ToastKind) tea.Cmd {
	return func() tea.Msg {
		return ShowToastMsg{Message: message, Kind: kind}
	}
}

// Toast holds the currently visible notification, if any.
type Toast struct {
	message string
	kind    ToastKind
	seq     int
}

// Update handles toast messages.
func (t Toast) Update(msg tea.Msg) (Toast, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowToastMsg:
		t.seq++
		t.message = msg.Message
		t.kind = msg.Kind
		seq := t.seq
		return t, tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return dismissToastMsg{seq: seq}
		})
	case dismissToastMsg:
		if msg.seq == t.seq {
			t.message = ""
		}
	}
	return t, nil
}

// Visible reports whether a toast is showing.
func (t Toast) Visible() bool {
	return t.message != ""
}

// View renders the toast.
func (t Toast) View() string {
	if t.message == "" {
		return ""
	}
	if t.kind == ToastError {
		return theme.ToastError.Render(t.message)
	}
	return theme.ToastInfo.Render(t.message)
}
