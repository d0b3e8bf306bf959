package solve

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"quizdeck/internal/generation"
	"quizdeck/internal/ui/components"
	"quizdeck/internal/ui/theme"
)

func (s *SolveScreen) View(width, height int) string {
	if s.confirmingFinish {
		return s.renderFinishConfirm(width)
	}

	if !s.review {
		if s.sess.State == generation.StateFailed {
			return renderFailed(width, s.sess.Err)
		}
		if len(s.items) == 0 {
			return s.renderWaiting(width)
		}
	}

	if len(s.items) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Nothing to show.")
	}

	return s.renderQuestion(width)
}

func (s *SolveScreen) renderQuestion(width int) string {
	var b strings.Builder

	total := len(s.items)
	expected := s.sess.TotalCount
	if expected < total {
		expected = total
	}

	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Question %d/%d", s.idx+1, expected))

	var status string
	if !s.review && s.sess.Streaming() {
		status = fmt.Sprintf("answered %d   generating %d more...", total-s.unanswered(), s.sess.Remaining())
	} else if s.review {
		status = s.flow.FileName
	} else {
		status = fmt.Sprintf("answered %d/%d", total-s.unanswered(), total)
	}
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(status)

	line := left
	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View()))
	b.WriteString("\n")

	bar := components.NewProgressBar("", float64(total-s.unanswered())/float64(expected), true, min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))

	return b.String()
}

func (s *SolveScreen) renderWaiting(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	mins := int(s.sess.Elapsed.Minutes())
	secs := int(s.sess.Elapsed.Seconds()) % 60

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Generating your quiz..."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d:%02d elapsed", mins, secs)))

	if s.sess.ShowWaitHint {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render("Long documents can take a while. The first questions appear as soon as they are ready."))
	}

	return b.String()
}

func (s *SolveScreen) renderFinishConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Finish now?"))
	b.WriteString("\n")

	detail := fmt.Sprintf("%d questions are still unanswered and count as incorrect.", s.unanswered())
	if s.sess.Streaming() {
		detail = "More questions are still being generated. " + detail
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(detail))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Finish and score"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] Keep solving"))

	return b.String()
}

func renderFailed(width int, err error) string {
	msg := "generation failed"
	if err != nil {
		msg = err.Error()
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Quiz generation failed: %s\n\n  Press any key to go back.", msg))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
