package status

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/docuflow/console/internal/session"
	"github.com/docuflow/console/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Connected bool
	Phase     session.Phase
	SessionID string
	Fault     *session.Fault
	Width     int
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

func phaseColor(p session.Phase) lipgloss.Color {
	switch p {
	case session.Connecting:
		return theme.ColorConnecting
	case session.Connected:
		return theme.ColorConnected
	case session.Completed:
		return theme.ColorCompleted
	case session.Errored:
		return theme.ColorErrored
	default:
		return theme.ColorIdle
	}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● connected")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ disconnected")
	}

	phaseStr := lipgloss.NewStyle().Foreground(phaseColor(m.Phase)).Render(m.Phase.String())

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + phaseStr
	if m.SessionID != "" {
		content += sep + theme.DimStyle.Render("session "+m.SessionID)
	}
	if m.Fault != nil {
		content += sep + theme.ErrorStyle.Render(string(m.Fault.Kind)+": "+m.Fault.Message)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Render(content)
}
