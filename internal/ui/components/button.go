package components

import (
	"quizdeck/internal/ui/theme"
)

// Button is a submit affordance rendered under a text input. It lights up
// once the input holds something submittable; the owning screen handles
// the enter key itself.
type Button struct {
	Label  string
	Active bool
}

// NewButton creates a button.
func NewButton(label string, active bool) Button {
	return Button{Label: label, Active: active}
}

// View renders the button.
func (b Button) View() string {
	label := "  ▸ " + b.Label + " "
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
