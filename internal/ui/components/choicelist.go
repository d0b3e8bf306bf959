package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"quizdeck/internal/quiz"
	"quizdeck/internal/ui/theme"
)

// ChoiceList renders the selections of a quiz item and tracks the cursor.
// In review mode the correct selection and the user's mistake are revealed.
type ChoiceList struct {
	Item   quiz.Item
	Cursor int
	Review bool
}

// NewChoiceList creates a choice list for the given item. The cursor starts
// on the previously chosen selection when there is one.
func NewChoiceList(item quiz.Item, review bool) ChoiceList {
	cursor := 0
	if item.UserAnswer != nil {
		for i, sel := range item.Selections {
			if sel.ID == *item.UserAnswer {
				cursor = i
				break
			}
		}
	}
	return ChoiceList{
		Item:   item,
		Cursor: cursor,
		Review: review,
	}
}

// Update handles cursor movement. Choosing is left to the caller so that it
// can record the answer on its own model.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, tea.Cmd) {
	if c.Review {
		return c, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Item.Selections)-1 {
			c.Cursor++
		}
	}

	return c, nil
}

// CursorSelection returns the selection under the cursor, or nil when the
// item has no selections.
func (c ChoiceList) CursorSelection() *quiz.Selection {
	if c.Cursor < 0 || c.Cursor >= len(c.Item.Selections) {
		return nil
	}
	return &c.Item.Selections[c.Cursor]
}

// View renders the choice list.
func (c ChoiceList) View() string {
	title := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Item.Title)
	if c.Item.Check {
		title += " " + theme.Marked.Render("⚑")
	}
	s := title + "\n\n"

	for i, sel := range c.Item.Selections {
		label := string(rune('A' + i))
		prefix := "  "
		if i == c.Cursor && !c.Review {
			prefix = "▸ "
		}

		marker := " "
		if c.Item.UserAnswer != nil && sel.ID == *c.Item.UserAnswer {
			marker = "●"
		}

		line := fmt.Sprintf("%s%s %s)  %s", prefix, marker, label, sel.Content)

		if c.Review {
			switch {
			case sel.Correct:
				s += theme.Correct.Render(line) + "\n"
			case c.Item.UserAnswer != nil && sel.ID == *c.Item.UserAnswer:
				s += theme.Incorrect.Render(line) + "\n"
			default:
				s += lipgloss.NewStyle().Foreground(theme.TextDim).Render(line) + "\n"
			}
			continue
		}

		if i == c.Cursor {
			s += theme.Selected.Render(line) + "\n"
		} else if c.Item.UserAnswer != nil && sel.ID == *c.Item.UserAnswer {
			s += lipgloss.NewStyle().Foreground(theme.Secondary).Render(line) + "\n"
		} else {
			s += theme.Unselected.Render(line) + "\n"
		}
	}

	return s
}
