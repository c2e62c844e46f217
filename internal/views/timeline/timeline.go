// Package timeline renders the append-only progress log of one workflow
// session. Entries are shown exactly in arrival order; the view never
// re-sorts or collapses repeated phases.
package timeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/docuflow/console/internal/session"
	"github.com/docuflow/console/internal/theme"
)

// Model holds the timeline state.
type Model struct {
	Entries       []session.ProgressEntry
	ExecutorsDone int
	Result        *session.WorkflowResult
	Width         int
	Height        int
}

// New creates a timeline model.
func New() Model {
	return Model{}
}

// View renders the progress log.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Workflow progress"))
	b.WriteString("\n")

	if len(m.Entries) == 0 {
		b.WriteString(theme.DimStyle.Render("  waiting for events..."))
		b.WriteString("\n")
	}

	for _, e := range m.Entries {
		var marker string
		switch e.Status {
		case session.StatusCompleted:
			marker = lipgloss.NewStyle().Foreground(theme.ColorDone).Render("✓")
		default:
			marker = lipgloss.NewStyle().Foreground(theme.ColorRunning).Render("…")
		}
		ts := theme.DimStyle.Render(e.ObservedAt.Format("15:04:05"))
		b.WriteString(fmt.Sprintf("  %s %-20s %-10s %s\n", marker, e.Phase, e.Status, ts))
	}

	if m.ExecutorsDone > 0 {
		b.WriteString(theme.DimStyle.Render(fmt.Sprintf("  %d executor(s) completed", m.ExecutorsDone)))
		b.WriteString("\n")
	}

	if m.Result != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorCompleted).Bold(true).
			Render("Result: " + m.Result.Result))
		b.WriteString("\n")
		b.WriteString(theme.DimStyle.Render("  completed " + m.Result.CompletedAt.Format("15:04:05")))
		b.WriteString("\n")
	}

	return b.String()
}
